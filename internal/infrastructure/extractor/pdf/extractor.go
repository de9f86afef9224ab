// Package pdf extracts page text and embedded images from PDF documents
// using pdfcpu. Text comes from a content-stream parse, which covers the
// common Tj/TJ encodings; pages whose text cannot be decoded still
// contribute their images.
package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kvasilyev/pdfsearch/internal/core/domain"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, r io.ReadSeeker) ([]domain.Page, error) {
	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(r, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	var pages []domain.Page
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := domain.Page{
			Number: pageNr,
			Text:   extractPageText(pdfCtx, pageNr),
			Images: extractPageImages(pdfCtx, pageNr),
		}
		if page.Text == "" && len(page.Images) == 0 {
			continue
		}
		pages = append(pages, page)
	}

	return pages, nil
}

func extractPageText(pdfCtx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return extractTextFromStream(data)
}

// extractPageImages reads the page's image XObjects. A single unreadable
// image is skipped; it must not sink the whole page.
func extractPageImages(pdfCtx *model.Context, pageNr int) []domain.EmbeddedImage {
	extracted, err := pdfcpu.ExtractPageImages(pdfCtx, pageNr, false)
	if err != nil {
		slog.Warn("page_images_unreadable", "page", pageNr, "error", err)
		return nil
	}

	objNrs := make([]int, 0, len(extracted))
	for objNr := range extracted {
		objNrs = append(objNrs, objNr)
	}
	sort.Ints(objNrs)

	var images []domain.EmbeddedImage
	for i, objNr := range objNrs {
		img := extracted[objNr]
		data, err := io.ReadAll(img)
		if err != nil || len(data) == 0 {
			slog.Warn("page_image_unreadable", "page", pageNr, "obj_nr", objNr, "error", err)
			continue
		}

		format := img.FileType
		if format == "" {
			format = "png"
		}
		images = append(images, domain.EmbeddedImage{
			Index:  i,
			Format: format,
			Data:   data,
		})
	}
	return images
}
