package bootstrap

import (
	"context"
	"fmt"

	"github.com/kvasilyev/pdfsearch/internal/config"
	"github.com/kvasilyev/pdfsearch/internal/core/ports"
	"github.com/kvasilyev/pdfsearch/internal/core/usecase"
	"github.com/kvasilyev/pdfsearch/internal/infrastructure/extractor/pdf"
	"github.com/kvasilyev/pdfsearch/internal/infrastructure/queue/nats"
	fsrepo "github.com/kvasilyev/pdfsearch/internal/infrastructure/repository/firestore"
	"github.com/kvasilyev/pdfsearch/internal/infrastructure/repository/postgres"
	"github.com/kvasilyev/pdfsearch/internal/infrastructure/resilience"
	"github.com/kvasilyev/pdfsearch/internal/infrastructure/storage/localfs"
	miniostore "github.com/kvasilyev/pdfsearch/internal/infrastructure/storage/minio"
	"github.com/kvasilyev/pdfsearch/internal/infrastructure/vision"
)

// objectStorage is what both storage backends provide: blob access plus
// public URL resolution for extracted images, plus a health probe.
type objectStorage interface {
	ports.ObjectStorage
	ports.PublicURLResolver
	Ping(ctx context.Context) error
}

type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Repo  ports.DocumentRepository

	SearchUC  ports.ContentSearcher
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor

	Health func(context.Context) error

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := newObjectStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	candidates, err := fsrepo.New(ctx, cfg.FirestoreProjectID, fsrepo.Collections{
		Texts:  cfg.TextCollection,
		Images: cfg.ImageCollection,
		Videos: cfg.VideoCollection,
	}, storage)
	if err != nil {
		return nil, fmt.Errorf("init candidate repository: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	annotator := vision.New(cfg.VisionURL, cfg.VisionAPIKey,
		resilience.NewExecutor(resilience.DefaultConfig()))
	extractor := pdf.NewExtractor()

	retrier := resilience.NewRetrier(resilience.NewExecutor(resilience.SearchConfig()))
	searchUC := usecase.NewSearchUseCase(candidates, retrier, usecase.Thresholds{
		Text:  cfg.TextThreshold,
		Image: cfg.ImageThreshold,
		Video: cfg.VideoThreshold,
	})
	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, storage, extractor, annotator, candidates)

	health := func(ctx context.Context) error {
		if err := candidates.Ping(ctx); err != nil {
			return err
		}
		return storage.Ping(ctx)
	}

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		SearchUC:  searchUC,
		IngestUC:  ingestUC,
		ProcessUC: processUC,

		Health: health,

		closeFn: func() {
			queue.Close()
			_ = candidates.Close()
			_ = db.Close()
		},
	}, nil
}

func newObjectStorage(cfg config.Config) (objectStorage, error) {
	switch cfg.StorageBackend {
	case "minio":
		return miniostore.New(miniostore.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	case "localfs":
		return localfs.New(cfg.StoragePath, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
