package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/kvasilyev/pdfsearch/internal/core/domain"
	"github.com/kvasilyev/pdfsearch/internal/core/ports"
)

const extractedImagePrefix = "extracted_images"

type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	storage   ports.ObjectStorage
	extractor ports.PageExtractor
	annotator ports.ImageAnnotator
	artifacts ports.ArtifactStore
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	extractor ports.PageExtractor,
	annotator ports.ImageAnnotator,
	artifacts ports.ArtifactStore,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		storage:   storage,
		extractor: extractor,
		annotator: annotator,
		artifacts: artifacts,
	}
}

// ProcessByID runs the extraction pipeline for one uploaded document: page
// text and embedded images become search candidates. Per-image failures are
// logged and skipped; anything else marks the document failed.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	stats, err := uc.extractPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveExtractionStats(ctx, documentID, stats); err != nil {
		return fmt.Errorf("save extraction stats: %w", err)
	}
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) extractPipeline(ctx context.Context, documentID string) (domain.ExtractionStats, error) {
	var stats domain.ExtractionStats

	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return stats, fmt.Errorf("fetch document by id: %w", err)
	}

	raw, err := uc.loadSource(ctx, doc)
	if err != nil {
		return stats, err
	}

	pages, err := uc.extractor.Extract(ctx, bytes.NewReader(raw))
	if err != nil {
		return stats, fmt.Errorf("extract pages: %w", err)
	}
	if len(pages) == 0 {
		return stats, domain.WrapError(domain.ErrInvalidInput, "extract pages", errors.New("document has no pages"))
	}

	for _, page := range pages {
		if page.Text != "" {
			err := uc.artifacts.SavePageText(ctx, domain.PageText{
				SourceFile: doc.Filename,
				Page:       page.Number,
				Content:    page.Text,
			})
			if err != nil {
				return stats, fmt.Errorf("save page %d text: %w", page.Number, err)
			}
			stats.Pages++
		}

		for _, img := range page.Images {
			if err := uc.processImage(ctx, doc, page.Number, img); err != nil {
				slog.Warn("page_image_skipped",
					"document_id", doc.ID,
					"page", page.Number,
					"image_index", img.Index,
					"error", err,
				)
				continue
			}
			stats.Images++
		}
	}

	return stats, nil
}

func (uc *ProcessDocumentUseCase) loadSource(ctx context.Context, doc *domain.Document) ([]byte, error) {
	reader, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}
	return raw, nil
}

func (uc *ProcessDocumentUseCase) processImage(ctx context.Context, doc *domain.Document, pageNr int, img domain.EmbeddedImage) error {
	description, err := uc.annotator.Annotate(ctx, img.Data)
	if err != nil {
		slog.Warn("image_annotation_failed", "document_id", doc.ID, "page", pageNr, "error", err)
		description = ""
	}
	if description == "" {
		description = fmt.Sprintf("Image from %s on page %d", doc.Filename, pageNr)
	}

	key := fmt.Sprintf("%s/%s_p%d_i%d.%s", extractedImagePrefix, doc.Filename, pageNr, img.Index, img.Format)
	err = uc.storage.Save(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), "image/"+img.Format)
	if err != nil {
		return fmt.Errorf("store extracted image: %w", err)
	}

	err = uc.artifacts.SavePageImage(ctx, domain.PageImage{
		SourceFile:  doc.Filename,
		Page:        pageNr,
		Index:       img.Index,
		ImagePath:   key,
		Description: description,
		Format:      img.Format,
	})
	if err != nil {
		return fmt.Errorf("save image artifact: %w", err)
	}
	return nil
}
