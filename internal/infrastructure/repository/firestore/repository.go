// Package firestore reads and writes search candidates. All tolerance for
// missing or odd fields in raw documents lives here, at the translation
// boundary; the core only ever sees typed candidates.
package firestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	fsSDK "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/kvasilyev/pdfsearch/internal/core/domain"
	"github.com/kvasilyev/pdfsearch/internal/core/ports"
)

type Collections struct {
	Texts  string
	Images string
	Videos string
}

func DefaultCollections() Collections {
	return Collections{
		Texts:  "pdf_text",
		Images: "pdf_images_new",
		Videos: "videos",
	}
}

type Repository struct {
	client   *fsSDK.Client
	cols     Collections
	resolver ports.PublicURLResolver
}

func New(
	ctx context.Context,
	projectID string,
	cols Collections,
	resolver ports.PublicURLResolver,
	opts ...option.ClientOption,
) (*Repository, error) {
	client, err := fsSDK.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Repository{
		client:   client,
		cols:     cols,
		resolver: resolver,
	}, nil
}

func (r *Repository) Close() error {
	return r.client.Close()
}

// Ping reads a single document so health checks exercise a real round trip.
func (r *Repository) Ping(ctx context.Context) error {
	iter := r.client.Collection(r.cols.Texts).Limit(1).Documents(ctx)
	defer iter.Stop()

	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

func (r *Repository) FetchTexts(ctx context.Context) ([]domain.Candidate, error) {
	var out []domain.Candidate
	err := r.scan(ctx, r.cols.Texts, func(doc *fsSDK.DocumentSnapshot) error {
		var raw textDoc
		if err := doc.DataTo(&raw); err != nil {
			return err
		}
		out = append(out, toTextCandidate(raw))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) FetchImages(ctx context.Context) ([]domain.Candidate, error) {
	var out []domain.Candidate
	err := r.scan(ctx, r.cols.Images, func(doc *fsSDK.DocumentSnapshot) error {
		var raw imageDoc
		if err := doc.DataTo(&raw); err != nil {
			return err
		}
		candidate, ok := toImageCandidate(raw, r.resolver)
		if !ok {
			slog.Warn("image_candidate_skipped", "doc_id", doc.Ref.ID, "image_path", raw.ImagePath)
			return nil
		}
		out = append(out, candidate)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) FetchVideos(ctx context.Context) ([]domain.Candidate, error) {
	var out []domain.Candidate
	err := r.scan(ctx, r.cols.Videos, func(doc *fsSDK.DocumentSnapshot) error {
		var raw videoDoc
		if err := doc.DataTo(&raw); err != nil {
			return err
		}
		out = append(out, toVideoCandidate(raw))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// scan walks one collection. A document that fails to decode is logged and
// skipped; it must not hide the rest of the collection.
func (r *Repository) scan(ctx context.Context, collection string, visit func(*fsSDK.DocumentSnapshot) error) error {
	iter := r.client.Collection(collection).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("scan %s: %w", collection, err)
		}
		if err := visit(doc); err != nil {
			slog.Warn("document_decode_failed", "collection", collection, "doc_id", doc.Ref.ID, "error", err)
		}
	}
}

type pageTextRecord struct {
	SourceFile string    `firestore:"source_file"`
	Page       int       `firestore:"page"`
	Content    string    `firestore:"content"`
	Timestamp  time.Time `firestore:"timestamp,serverTimestamp"`
}

func (r *Repository) SavePageText(ctx context.Context, art domain.PageText) error {
	_, _, err := r.client.Collection(r.cols.Texts).Add(ctx, pageTextRecord{
		SourceFile: art.SourceFile,
		Page:       art.Page,
		Content:    art.Content,
	})
	if err != nil {
		return fmt.Errorf("save page text: %w", err)
	}
	return nil
}

type pageImageRecord struct {
	SourceFile  string    `firestore:"source_file"`
	Page        int       `firestore:"page"`
	ImageIndex  int       `firestore:"image_index"`
	ImagePath   string    `firestore:"image_path"`
	Description string    `firestore:"description"`
	Format      string    `firestore:"format"`
	Timestamp   time.Time `firestore:"timestamp,serverTimestamp"`
}

func (r *Repository) SavePageImage(ctx context.Context, art domain.PageImage) error {
	_, _, err := r.client.Collection(r.cols.Images).Add(ctx, pageImageRecord{
		SourceFile:  art.SourceFile,
		Page:        art.Page,
		ImageIndex:  art.Index,
		ImagePath:   art.ImagePath,
		Description: art.Description,
		Format:      art.Format,
	})
	if err != nil {
		return fmt.Errorf("save page image: %w", err)
	}
	return nil
}
