package httpadapter

import (
	"net/http"

	"github.com/kvasilyev/pdfsearch/internal/core/domain"
)

// mapSearchError translates core errors into an HTTP status and the
// user-facing message carried by the uniform error payload.
func mapSearchError(err error) (int, string) {
	switch {
	case domain.IsKind(err, domain.ErrInvalidQuery):
		return http.StatusBadRequest, "Invalid query"
	case domain.IsKind(err, domain.ErrNoResults):
		return http.StatusNotFound, "No results found"
	case domain.IsKind(err, domain.ErrSearchUnavailable):
		return http.StatusServiceUnavailable, "Service unavailable"
	default:
		return http.StatusServiceUnavailable, "Service unavailable"
	}
}
