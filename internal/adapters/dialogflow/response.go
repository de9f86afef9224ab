// Package dialogflow holds the webhook wire types for the conversational
// platform. Field names are part of the agent contract; do not rename them.
package dialogflow

import (
	"fmt"

	"github.com/kvasilyev/pdfsearch/internal/core/domain"
)

type WebhookResponse struct {
	SessionInfo         SessionInfo         `json:"sessionInfo"`
	FulfillmentResponse FulfillmentResponse `json:"fulfillmentResponse"`
}

type SessionInfo struct {
	Parameters map[string]any `json:"parameters,omitempty"`
}

type FulfillmentResponse struct {
	Messages []Message `json:"messages"`
}

type Message struct {
	Text    *Text        `json:"text,omitempty"`
	Payload *RichPayload `json:"payload,omitempty"`
}

type Text struct {
	Text []string `json:"text"`
}

type RichPayload struct {
	RichContent [][]RichItem `json:"richContent"`
}

type RichItem struct {
	Type              string `json:"type"`
	RawURL            string `json:"rawUrl"`
	AccessibilityText string `json:"accessibilityText"`
}

// FormatResult builds the fulfillment payload for a selected candidate.
// The candidate itself is only read, never modified.
func FormatResult(result *domain.ScoredCandidate, query string) WebhookResponse {
	if result == nil {
		return FormatNoResults(query)
	}

	switch result.Type {
	case domain.CandidateVideo:
		return formatVideo(result, query)
	case domain.CandidateImage:
		return formatImage(result, query)
	default:
		return formatText(result, query)
	}
}

// FormatNoResults signals "nothing cleared the thresholds". It shares the
// uniform error shape on the wire but stays a separate constructor so the
// two payloads cannot drift together silently.
func FormatNoResults(string) WebhookResponse {
	return FormatError("No results found")
}

// FormatError is the uniform error payload for every user-facing failure.
func FormatError(message string) WebhookResponse {
	return WebhookResponse{
		SessionInfo: SessionInfo{
			Parameters: map[string]any{
				"has_image": false,
				"has_video": false,
			},
		},
		FulfillmentResponse: FulfillmentResponse{
			Messages: []Message{
				{Text: &Text{Text: []string{"Error: " + message}}},
			},
		},
	}
}

func formatText(result *domain.ScoredCandidate, query string) WebhookResponse {
	return WebhookResponse{
		SessionInfo: SessionInfo{
			Parameters: map[string]any{
				"has_image": false,
				"has_video": false,
				"query":     query,
			},
		},
		FulfillmentResponse: FulfillmentResponse{
			Messages: []Message{
				{Text: &Text{Text: []string{
					fmt.Sprintf("%s\n\nSource: %s", result.Content, sourceOrUnknown(result.Source)),
				}}},
			},
		},
	}
}

func formatVideo(result *domain.ScoredCandidate, query string) WebhookResponse {
	caption := fmt.Sprintf(
		"🎬 **%s**\n📺 %s\n⏱ Duration: %s | 👁 Views: %d\n🔗 Watch here: %s",
		result.Title, result.Description, result.Duration, result.Views, result.VideoURL,
	)

	return WebhookResponse{
		SessionInfo: SessionInfo{
			Parameters: map[string]any{
				"query":             query,
				"has_video":         true,
				"has_image":         false,
				"video_title":       result.Title,
				"video_url":         result.VideoURL,
				"video_description": result.Description,
				"video_duration":    result.Duration,
				"video_views":       result.Views,
			},
		},
		FulfillmentResponse: FulfillmentResponse{
			Messages: []Message{
				{Text: &Text{Text: []string{caption}}},
				{Payload: &RichPayload{
					RichContent: [][]RichItem{{
						{
							Type:              "video",
							RawURL:            result.VideoURL,
							AccessibilityText: result.Title,
						},
					}},
				}},
			},
		},
	}
}

func formatImage(result *domain.ScoredCandidate, query string) WebhookResponse {
	source := sourceOrUnknown(result.Source)

	return WebhookResponse{
		SessionInfo: SessionInfo{
			Parameters: map[string]any{
				"has_image": true,
				"has_video": false,
				"query":     query,
				"image_url": result.ImageURL,
				"source":    source,
				"page":      result.Page,
			},
		},
		FulfillmentResponse: FulfillmentResponse{
			Messages: []Message{
				{Text: &Text{Text: []string{
					fmt.Sprintf("I found an image from %s (Page %d)", source, result.Page),
				}}},
				{Payload: &RichPayload{
					RichContent: [][]RichItem{{
						{
							Type:              "image",
							RawURL:            result.ImageURL,
							AccessibilityText: "Image from " + source,
						},
					}},
				}},
			},
		},
	}
}

func sourceOrUnknown(source string) string {
	if source == "" {
		return "Unknown"
	}
	return source
}
