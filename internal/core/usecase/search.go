package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kvasilyev/pdfsearch/internal/core/domain"
	"github.com/kvasilyev/pdfsearch/internal/core/ports"
)

// Thresholds are the per-type minimum scores (exclusive) a candidate must
// clear in the general search branch. Videos run a deliberately low bar so
// they surface ahead of weak text matches.
type Thresholds struct {
	Text  float64
	Image float64
	Video float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Text:  0.05,
		Image: 0.01,
		Video: 0.001,
	}
}

// Retrier runs fn with the retry policy configured for the search call-site.
type Retrier interface {
	Execute(ctx context.Context, operation string, fn func(context.Context) error) error
}

var errNoCandidates = errors.New("no candidate above threshold")

type SearchUseCase struct {
	repo       ports.CandidateRepository
	retry      Retrier
	thresholds Thresholds
}

func NewSearchUseCase(repo ports.CandidateRepository, retry Retrier, thresholds Thresholds) *SearchUseCase {
	return &SearchUseCase{
		repo:       repo,
		retry:      retry,
		thresholds: thresholds,
	}
}

// Search picks the single best candidate for the query.
//
// Explicit video requests bypass thresholded ranking: if any video exists,
// the highest-scoring one wins outright. Otherwise all three content types
// are scored, gated by their thresholds, and the maximum wins. Exact ties
// resolve video > text > image.
func (uc *SearchUseCase) Search(ctx context.Context, query string) (*domain.ScoredCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidQuery, "search", errors.New("empty query after trim"))
	}

	videoIntent := IsVideoRequest(query)
	if videoIntent {
		if best, ok := uc.forcedVideo(ctx, query); ok {
			return best, nil
		}
		// No videos at all: fall through to the general search.
	}

	var best *domain.ScoredCandidate
	err := uc.retry.Execute(ctx, "search.general", func(ctx context.Context) error {
		found, err := uc.generalSearch(ctx, query, videoIntent)
		if err != nil {
			return err
		}
		best = found
		return nil
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrSearchUnavailable, "search", err)
	}
	if best == nil {
		return nil, domain.WrapError(domain.ErrNoResults, "search", errNoCandidates)
	}
	return best, nil
}

// forcedVideo serves an explicit video request: any video beats everything
// else, threshold ignored. A fetch failure here degrades to "no videos" so
// the general search still runs.
func (uc *SearchUseCase) forcedVideo(ctx context.Context, query string) (*domain.ScoredCandidate, bool) {
	videos, err := uc.repo.FetchVideos(ctx)
	if err != nil {
		slog.Warn("candidate_fetch_failed", "content_type", domain.CandidateVideo, "branch", "video_intent", "error", err)
		return nil, false
	}
	if len(videos) == 0 {
		return nil, false
	}

	best := domain.ScoredCandidate{Candidate: videos[0], Score: Score(query, videos[0].SearchableText())}
	for _, c := range videos[1:] {
		if s := Score(query, c.SearchableText()); s > best.Score {
			best = domain.ScoredCandidate{Candidate: c, Score: s}
		}
	}
	return &best, true
}

func (uc *SearchUseCase) generalSearch(ctx context.Context, query string, videoIntent bool) (*domain.ScoredCandidate, error) {
	pool := make([]domain.ScoredCandidate, 0, 16)

	// Videos go into the pool first, then texts, then images: the strict
	// max scan below keeps the first of an exact tie, which fixes the
	// cross-type tie-break order.
	if !videoIntent {
		videos, err := uc.fetch(ctx, domain.CandidateVideo, uc.repo.FetchVideos)
		if err != nil {
			return nil, err
		}
		pool = uc.scoreInto(pool, query, videos, uc.thresholds.Video)
	}

	texts, err := uc.fetch(ctx, domain.CandidateText, uc.repo.FetchTexts)
	if err != nil {
		return nil, err
	}
	pool = uc.scoreInto(pool, query, texts, uc.thresholds.Text)

	images, err := uc.fetch(ctx, domain.CandidateImage, uc.repo.FetchImages)
	if err != nil {
		return nil, err
	}
	pool = uc.scoreInto(pool, query, images, uc.thresholds.Image)

	if len(pool) == 0 {
		return nil, nil
	}

	best := pool[0]
	for _, sc := range pool[1:] {
		if sc.Score > best.Score {
			best = sc
		}
	}
	return &best, nil
}

// fetch recovers per-type repository failures: they are logged and treated
// as an empty set so one broken collection never sinks the whole search.
// Context-level errors do escape, up into the retry envelope.
func (uc *SearchUseCase) fetch(
	ctx context.Context,
	contentType domain.CandidateType,
	fn func(context.Context) ([]domain.Candidate, error),
) ([]domain.Candidate, error) {
	candidates, err := fn(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		slog.Warn("candidate_fetch_failed", "content_type", contentType, "branch", "general", "error", err)
		return nil, nil
	}
	return candidates, nil
}

func (uc *SearchUseCase) scoreInto(pool []domain.ScoredCandidate, query string, candidates []domain.Candidate, threshold float64) []domain.ScoredCandidate {
	for _, c := range candidates {
		if s := Score(query, c.SearchableText()); s > threshold {
			pool = append(pool, domain.ScoredCandidate{Candidate: c, Score: s})
		}
	}
	return pool
}
