package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kvasilyev/pdfsearch/internal/core/domain"
)

type fakeSearcher struct {
	result *domain.ScoredCandidate
	err    error

	lastQuery string
}

func (f *fakeSearcher) Search(_ context.Context, query string) (*domain.ScoredCandidate, error) {
	f.lastQuery = query
	return f.result, f.err
}

type fakeIngestor struct {
	doc *domain.Document
	err error
}

func (f *fakeIngestor) Upload(_ context.Context, filename, mimeType string, _ io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc := *f.doc
	doc.Filename = filename
	doc.MimeType = mimeType
	return &doc, nil
}

type fakeDocReader struct {
	doc *domain.Document
	err error
}

func (f *fakeDocReader) GetByID(context.Context, string) (*domain.Document, error) {
	return f.doc, f.err
}

func newTestRouter(searcher *fakeSearcher, ingestor *fakeIngestor, docs *fakeDocReader) http.Handler {
	if searcher == nil {
		searcher = &fakeSearcher{}
	}
	if ingestor == nil {
		ingestor = &fakeIngestor{doc: &domain.Document{ID: "doc-1", Status: domain.StatusUploaded}}
	}
	if docs == nil {
		docs = &fakeDocReader{doc: &domain.Document{ID: "doc-1", Status: domain.StatusReady}}
	}
	return NewRouter(Config{Service: "test"}, searcher, ingestor, docs, nil, nil).Handler()
}

func postWebhook(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func decodeWebhookResponse(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func firstMessageText(t *testing.T, payload map[string]any) string {
	t.Helper()
	fulfillment, _ := payload["fulfillmentResponse"].(map[string]any)
	messages, _ := fulfillment["messages"].([]any)
	if len(messages) == 0 {
		t.Fatalf("no messages in payload %v", payload)
	}
	first, _ := messages[0].(map[string]any)
	text, _ := first["text"].(map[string]any)
	lines, _ := text["text"].([]any)
	if len(lines) == 0 {
		t.Fatalf("no text lines in payload %v", payload)
	}
	return lines[0].(string)
}

func TestWebhookReturnsTextResult(t *testing.T) {
	searcher := &fakeSearcher{result: &domain.ScoredCandidate{
		Candidate: domain.Candidate{
			Type:    domain.CandidateText,
			Source:  "report.pdf",
			Content: "revenue growth accelerated",
		},
		Score: 1.2,
	}}
	handler := newTestRouter(searcher, nil, nil)

	res := postWebhook(t, handler, `{"sessionInfo":{"parameters":{"query":"revenue growth"}}}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if searcher.lastQuery != "revenue growth" {
		t.Fatalf("unexpected query passed to search: %q", searcher.lastQuery)
	}

	payload := decodeWebhookResponse(t, res)
	if got := firstMessageText(t, payload); got != "revenue growth accelerated\n\nSource: report.pdf" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWebhookRejectsNonPost(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	res := postWebhook(t, handler, `{"text": `)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	payload := decodeWebhookResponse(t, res)
	if got := firstMessageText(t, payload); got != "Error: Invalid content type" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWebhookRejectsEmptyQuery(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	res := postWebhook(t, handler, `{"text":"   "}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	payload := decodeWebhookResponse(t, res)
	if got := firstMessageText(t, payload); got != "Error: Invalid query" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWebhookNoResultsIs404(t *testing.T) {
	searcher := &fakeSearcher{err: domain.WrapError(domain.ErrNoResults, "search", errors.New("empty pool"))}
	handler := newTestRouter(searcher, nil, nil)

	res := postWebhook(t, handler, `{"text":"xyzzy nonsense"}`)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
	payload := decodeWebhookResponse(t, res)
	if got := firstMessageText(t, payload); got != "Error: No results found" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWebhookSearchUnavailableIs503(t *testing.T) {
	searcher := &fakeSearcher{err: domain.WrapError(domain.ErrSearchUnavailable, "search", errors.New("retries exhausted"))}
	handler := newTestRouter(searcher, nil, nil)

	res := postWebhook(t, handler, `{"text":"revenue"}`)
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
	payload := decodeWebhookResponse(t, res)
	if got := firstMessageText(t, payload); got != "Error: Service unavailable" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestUploadDocumentAccepted(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "report.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("%PDF"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}

	var doc domain.Document
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.Filename != "report.pdf" {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestUploadDocumentRequiresFileField(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", strings.NewReader("plain body"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetDocumentByIDNotFound(t *testing.T) {
	docs := &fakeDocReader{err: domain.WrapError(domain.ErrDocumentNotFound, "repository.get_document", errors.New("id missing"))}
	handler := newTestRouter(nil, nil, docs)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetDocumentByID(t *testing.T) {
	docs := &fakeDocReader{doc: &domain.Document{ID: "doc-1", Status: domain.StatusReady, Pages: 3}}
	handler := newTestRouter(nil, nil, docs)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var doc domain.Document
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.ID != "doc-1" || doc.Pages != 3 {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestHealthzReportsFailure(t *testing.T) {
	health := func(context.Context) error { return errors.New("firestore unreachable") }
	handler := NewRouter(Config{Service: "test"}, &fakeSearcher{}, nil, nil, health, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
}

func TestRequestIDPropagatedToResponse(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-42")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if got := res.Header().Get("X-Request-Id"); got != "req-42" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}
