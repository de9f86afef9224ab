package ports

import (
	"context"
	"io"

	"github.com/kvasilyev/pdfsearch/internal/core/domain"
)

// ContentSearcher is the inbound contract for the webhook search endpoint.
type ContentSearcher interface {
	Search(ctx context.Context, query string) (*domain.ScoredCandidate, error)
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous extraction.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}
