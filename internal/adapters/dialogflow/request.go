package dialogflow

import "strings"

type WebhookRequest struct {
	FulfillmentInfo *FulfillmentInfo `json:"fulfillmentInfo,omitempty"`
	SessionInfo     *SessionInfo     `json:"sessionInfo,omitempty"`
	Text            string           `json:"text,omitempty"`
	Payload         *RequestPayload  `json:"payload,omitempty"`
}

type FulfillmentInfo struct {
	Tag string `json:"tag"`
}

type RequestPayload struct {
	QueryText string `json:"queryText,omitempty"`
}

// Query extracts the user query, trying the CX session parameter first,
// then the direct-call text field, then the custom payload format.
func (r *WebhookRequest) Query() string {
	if r.SessionInfo != nil && r.SessionInfo.Parameters != nil {
		if q, ok := r.SessionInfo.Parameters["query"].(string); ok && q != "" {
			return strings.TrimSpace(q)
		}
	}
	if r.Text != "" {
		return strings.TrimSpace(r.Text)
	}
	if r.Payload != nil && r.Payload.QueryText != "" {
		return strings.TrimSpace(r.Payload.QueryText)
	}
	return ""
}

// Tag returns the webhook tag, if the platform sent one.
func (r *WebhookRequest) Tag() string {
	if r.FulfillmentInfo == nil {
		return ""
	}
	return r.FulfillmentInfo.Tag
}
