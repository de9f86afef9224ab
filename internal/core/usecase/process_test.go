package usecase

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/kvasilyev/pdfsearch/internal/core/domain"
)

type fakeExtractor struct {
	pages []domain.Page
	err   error
}

func (f *fakeExtractor) Extract(context.Context, io.ReadSeeker) ([]domain.Page, error) {
	return f.pages, f.err
}

type fakeAnnotator struct {
	description string
	err         error
	calls       int
}

func (f *fakeAnnotator) Annotate(context.Context, []byte) (string, error) {
	f.calls++
	return f.description, f.err
}

type fakeArtifactStore struct {
	texts  []domain.PageText
	images []domain.PageImage

	textErr  error
	imageErr error
}

func (f *fakeArtifactStore) SavePageText(_ context.Context, art domain.PageText) error {
	if f.textErr != nil {
		return f.textErr
	}
	f.texts = append(f.texts, art)
	return nil
}

func (f *fakeArtifactStore) SavePageImage(_ context.Context, art domain.PageImage) error {
	if f.imageErr != nil {
		return f.imageErr
	}
	f.images = append(f.images, art)
	return nil
}

func uploadedDoc() *domain.Document {
	return &domain.Document{
		ID:          "doc-1",
		Filename:    "report.pdf",
		MimeType:    "application/pdf",
		StoragePath: "uploads/doc-1_report.pdf",
		Status:      domain.StatusUploaded,
	}
}

func TestProcessByIDHappyPath(t *testing.T) {
	repo := &fakeDocumentRepo{doc: uploadedDoc()}
	storage := &fakeObjectStorage{content: []byte("%PDF")}
	extractor := &fakeExtractor{pages: []domain.Page{
		{Number: 1, Text: "revenue grew", Images: []domain.EmbeddedImage{
			{Index: 0, Format: "png", Data: []byte("img")},
		}},
		{Number: 2, Text: "outlook improved"},
	}}
	annotator := &fakeAnnotator{description: "Contains: chart"}
	artifacts := &fakeArtifactStore{}

	uc := NewProcessDocumentUseCase(repo, storage, extractor, annotator, artifacts)
	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}

	wantStatuses := []domain.DocumentStatus{domain.StatusProcessing, domain.StatusReady}
	if len(repo.statuses) != 2 || repo.statuses[0] != wantStatuses[0] || repo.statuses[1] != wantStatuses[1] {
		t.Fatalf("unexpected status transitions %v", repo.statuses)
	}
	if len(repo.stats) != 1 || repo.stats[0].Pages != 2 || repo.stats[0].Images != 1 {
		t.Fatalf("unexpected extraction stats %+v", repo.stats)
	}

	if len(artifacts.texts) != 2 {
		t.Fatalf("expected 2 text artifacts, got %d", len(artifacts.texts))
	}
	if artifacts.texts[0].SourceFile != "report.pdf" || artifacts.texts[0].Page != 1 {
		t.Fatalf("unexpected text artifact %+v", artifacts.texts[0])
	}

	if len(artifacts.images) != 1 {
		t.Fatalf("expected 1 image artifact, got %d", len(artifacts.images))
	}
	img := artifacts.images[0]
	if img.ImagePath != "extracted_images/report.pdf_p1_i0.png" {
		t.Fatalf("unexpected image path %q", img.ImagePath)
	}
	if img.Description != "Contains: chart" {
		t.Fatalf("unexpected image description %q", img.Description)
	}
	if _, ok := storage.saved[img.ImagePath]; !ok {
		t.Fatalf("extracted image bytes not stored under %q", img.ImagePath)
	}
}

func TestProcessByIDSynthesizesDescriptionOnAnnotatorFailure(t *testing.T) {
	repo := &fakeDocumentRepo{doc: uploadedDoc()}
	extractor := &fakeExtractor{pages: []domain.Page{
		{Number: 3, Images: []domain.EmbeddedImage{{Index: 0, Format: "jpg", Data: []byte("img")}}},
	}}
	annotator := &fakeAnnotator{err: errors.New("vision down")}
	artifacts := &fakeArtifactStore{}

	uc := NewProcessDocumentUseCase(repo, &fakeObjectStorage{content: []byte("%PDF")}, extractor, annotator, artifacts)
	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}

	if len(artifacts.images) != 1 {
		t.Fatalf("expected image artifact despite annotator failure, got %d", len(artifacts.images))
	}
	if artifacts.images[0].Description != "Image from report.pdf on page 3" {
		t.Fatalf("unexpected fallback description %q", artifacts.images[0].Description)
	}
}

func TestProcessByIDSkipsFailedImageButKeepsPage(t *testing.T) {
	repo := &fakeDocumentRepo{doc: uploadedDoc()}
	extractor := &fakeExtractor{pages: []domain.Page{
		{Number: 1, Text: "some text", Images: []domain.EmbeddedImage{{Index: 0, Format: "png", Data: []byte("img")}}},
	}}
	artifacts := &fakeArtifactStore{imageErr: errors.New("firestore write failed")}

	uc := NewProcessDocumentUseCase(repo, &fakeObjectStorage{content: []byte("%PDF")}, extractor, &fakeAnnotator{}, artifacts)
	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}

	if repo.stats[0].Images != 0 {
		t.Fatalf("expected zero image artifacts counted, got %d", repo.stats[0].Images)
	}
	if repo.stats[0].Pages != 1 {
		t.Fatalf("expected page text still counted, got %d", repo.stats[0].Pages)
	}
	if repo.statuses[len(repo.statuses)-1] != domain.StatusReady {
		t.Fatalf("expected ready status, got %v", repo.statuses)
	}
}

func TestProcessByIDMarksFailedOnEmptyDocument(t *testing.T) {
	repo := &fakeDocumentRepo{doc: uploadedDoc()}
	extractor := &fakeExtractor{}

	uc := NewProcessDocumentUseCase(repo, &fakeObjectStorage{content: []byte("%PDF")}, extractor, &fakeAnnotator{}, &fakeArtifactStore{})
	err := uc.ProcessByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	last := repo.statuses[len(repo.statuses)-1]
	if last != domain.StatusFailed {
		t.Fatalf("expected failed status, got %v", repo.statuses)
	}
}

func TestProcessByIDMarksFailedOnExtractError(t *testing.T) {
	repo := &fakeDocumentRepo{doc: uploadedDoc()}
	extractor := &fakeExtractor{err: errors.New("corrupt xref table")}

	uc := NewProcessDocumentUseCase(repo, &fakeObjectStorage{content: []byte("not a pdf")}, extractor, &fakeAnnotator{}, &fakeArtifactStore{})
	if err := uc.ProcessByID(context.Background(), "doc-1"); err == nil {
		t.Fatal("expected error")
	}

	last := repo.statuses[len(repo.statuses)-1]
	if last != domain.StatusFailed {
		t.Fatalf("expected failed status, got %v", repo.statuses)
	}
	if len(repo.stats) != 0 {
		t.Fatalf("expected no stats on failure, got %+v", repo.stats)
	}
}
