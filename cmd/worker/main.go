package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kvasilyev/pdfsearch/internal/bootstrap"
	"github.com/kvasilyev/pdfsearch/internal/config"
	"github.com/kvasilyev/pdfsearch/internal/observability/logging"
	"github.com/kvasilyev/pdfsearch/internal/observability/metrics"
)

const processTimeout = 5 * time.Minute

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	m := metrics.NewWorkerMetrics("worker")
	metricsServer := startMetricsServer(cfg.WorkerMetricsPort, m)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, processTimeout)
		defer cancel()
		return processDocument(processCtx, app, m, documentID)
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

func processDocument(ctx context.Context, app *bootstrap.App, m *metrics.WorkerMetrics, documentID string) error {
	if doc, err := app.Repo.GetByID(ctx, documentID); err == nil {
		m.ObserveQueueLag("worker", time.Since(doc.CreatedAt))
	}

	m.StartDocument()
	start := time.Now()
	err := app.ProcessUC.ProcessByID(ctx, documentID)
	m.FinishDocument("worker", time.Since(start), err)
	if err != nil {
		return err
	}

	if doc, readErr := app.Repo.GetByID(ctx, documentID); readErr == nil {
		m.AddArtifacts("worker", "page_text", doc.Pages)
		m.AddArtifacts("worker", "page_image", doc.Images)
	}
	return nil
}

func startMetricsServer(port string, m *metrics.WorkerMetrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics_server_failed", "error", err)
		}
	}()
	return server
}
