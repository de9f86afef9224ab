package usecase

import "strings"

// videoIntentKeywords mark a query as an explicit video request. "show
// video" is kept even though "video" already matches; behavior over tidiness.
var videoIntentKeywords = []string{"video", "watch", "play", "show video"}

// IsVideoRequest reports whether the query explicitly asks for a video.
func IsVideoRequest(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range videoIntentKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
