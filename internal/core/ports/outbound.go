package ports

import (
	"context"
	"io"

	"github.com/kvasilyev/pdfsearch/internal/core/domain"
)

// CandidateRepository reads typed candidate snapshots for one search call.
// Each fetch is a full collection scan; filtering and scoring happen in the
// core.
type CandidateRepository interface {
	FetchTexts(ctx context.Context) ([]domain.Candidate, error)
	FetchImages(ctx context.Context) ([]domain.Candidate, error)
	FetchVideos(ctx context.Context) ([]domain.Candidate, error)
}

// ArtifactStore persists extraction artifacts produced by the worker.
type ArtifactStore interface {
	SavePageText(ctx context.Context, art domain.PageText) error
	SavePageImage(ctx context.Context, art domain.PageImage) error
}

// DocumentRepository persists and reads ingestion document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveExtractionStats(ctx context.Context, id string, stats domain.ExtractionStats) error
}

// ObjectStorage stores source documents and extracted images.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// PublicURLResolver turns an object-store key into a browser-reachable URL.
// The second return is false when no URL can be built for the key.
type PublicURLResolver interface {
	ResolvePublicURL(path string) (string, bool)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// PageExtractor walks a PDF and returns its pages with text and embedded
// images.
type PageExtractor interface {
	Extract(ctx context.Context, r io.ReadSeeker) ([]domain.Page, error)
}

// ImageAnnotator labels an image via the vision service. An empty
// description with nil error means the service saw nothing noteworthy.
type ImageAnnotator interface {
	Annotate(ctx context.Context, image []byte) (string, error)
}
