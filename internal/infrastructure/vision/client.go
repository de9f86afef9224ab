// Package vision annotates extracted images over a JSON HTTP API and turns
// the raw annotations into one searchable description line.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kvasilyev/pdfsearch/internal/infrastructure/resilience"
)

const (
	maxLabels   = 5
	maxObjects  = 3
	maxTextLen  = 100
	maxErrBytes = 2048
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

type annotateRequest struct {
	Image    imagePayload `json:"image"`
	Features []feature    `json:"features"`
}

type imagePayload struct {
	Content string `json:"content"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"max_results,omitempty"`
}

type annotateResponse struct {
	Labels  []annotation `json:"labels"`
	Objects []annotation `json:"objects"`
	Text    string       `json:"text"`
}

type annotation struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Annotate labels one image. An empty description with nil error means the
// service found nothing worth indexing.
func (c *Client) Annotate(ctx context.Context, image []byte) (string, error) {
	request := annotateRequest{
		Image: imagePayload{Content: base64.StdEncoding.EncodeToString(image)},
		Features: []feature{
			{Type: "LABEL_DETECTION", MaxResults: maxLabels},
			{Type: "OBJECT_LOCALIZATION", MaxResults: maxObjects},
			{Type: "TEXT_DETECTION"},
		},
	}

	var response annotateResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/images:annotate", request, &response, "annotate")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "vision.annotate", call, classifyVisionError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("vision annotate", err)
	}

	return buildDescription(response), nil
}

// buildDescription mirrors the stored description format searched at query
// time: "Contains: <labels> | Objects: <objects> | Text: <snippet>".
func buildDescription(resp annotateResponse) string {
	var parts []string

	if labels := descriptions(resp.Labels, maxLabels); len(labels) > 0 {
		parts = append(parts, "Contains: "+strings.Join(labels, ", "))
	}
	if objects := descriptions(resp.Objects, maxObjects); len(objects) > 0 {
		parts = append(parts, "Objects: "+strings.Join(objects, ", "))
	}
	if text := normalizeText(resp.Text); text != "" {
		parts = append(parts, "Text: "+text)
	}

	return strings.Join(parts, " | ")
}

func descriptions(items []annotation, limit int) []string {
	var out []string
	for _, item := range items {
		desc := strings.TrimSpace(item.Description)
		if desc == "" {
			continue
		}
		out = append(out, desc)
		if len(out) == limit {
			break
		}
	}
	return out
}

func normalizeText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > maxTextLen {
		return string(runes[:maxTextLen])
	}
	return text
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vision %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBytes))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
