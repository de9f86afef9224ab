package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kvasilyev/pdfsearch/internal/adapters/dialogflow"
	"github.com/kvasilyev/pdfsearch/internal/core/domain"
	"github.com/kvasilyev/pdfsearch/internal/core/ports"
	"github.com/kvasilyev/pdfsearch/internal/core/usecase"
	"github.com/kvasilyev/pdfsearch/internal/observability/metrics"
)

type Config struct {
	Service          string
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxConcurrent    int
	BackpressureWait time.Duration
}

type Router struct {
	cfg      Config
	searchUC ports.ContentSearcher
	ingestUC ports.DocumentIngestor
	docs     ports.DocumentReader
	health   func(context.Context) error
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg Config,
	searchUC ports.ContentSearcher,
	ingestUC ports.DocumentIngestor,
	docs ports.DocumentReader,
	health func(context.Context) error,
	m *metrics.HTTPServerMetrics,
) *Router {
	if cfg.Service == "" {
		cfg.Service = "api"
	}
	if cfg.BackpressureWait <= 0 {
		cfg.BackpressureWait = 100 * time.Millisecond
	}
	return &Router{
		cfg:      cfg,
		searchUC: searchUC,
		ingestUC: ingestUC,
		docs:     docs,
		health:   health,
		metrics:  m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/webhook", rt.webhook)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.MaxConcurrent, rt.cfg.BackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.cfg.Service, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, r *http.Request) {
	if rt.health != nil {
		if err := rt.health(r.Context()); err != nil {
			slog.Error("health_check_failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "unhealthy"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// webhook is the fulfillment endpoint for the conversational platform.
func (rt *Router) webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, dialogflow.FormatError("Method not allowed"))
		return
	}

	var req dialogflow.WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dialogflow.FormatError("Invalid content type"))
		return
	}

	query := req.Query()
	slog.Info("webhook_request",
		"request_id", requestIDFromContext(r.Context()),
		"tag", req.Tag(),
		"query", query,
	)
	if query == "" {
		writeJSON(w, http.StatusBadRequest, dialogflow.FormatError("Invalid query"))
		return
	}

	if rt.metrics != nil && usecase.IsVideoRequest(query) {
		rt.metrics.RecordVideoIntent(rt.cfg.Service)
	}

	start := time.Now()
	result, err := rt.searchUC.Search(r.Context(), query)
	if err != nil {
		if domain.IsKind(err, domain.ErrNoResults) {
			rt.recordSearch("none", start)
			writeJSON(w, http.StatusNotFound, dialogflow.FormatNoResults(query))
			return
		}
		rt.recordSearch("error", start)
		status, message := mapSearchError(err)
		slog.Warn("search_failed", "query", query, "error", err)
		writeJSON(w, status, dialogflow.FormatError(message))
		return
	}

	rt.recordSearch(string(result.Type), start)
	slog.Info("search_result",
		"query", query,
		"result_type", result.Type,
		"score", result.Score,
		"source", result.Source,
	)
	writeJSON(w, http.StatusOK, dialogflow.FormatResult(result, query))
}

func (rt *Router) recordSearch(resultType string, start time.Time) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordSearch(rt.cfg.Service, resultType, time.Since(start))
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingestUC.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		slog.Error("upload_failed", "filename", fileHeader.Filename, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		if domain.IsKind(err, domain.ErrDocumentNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
