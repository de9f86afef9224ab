package firestore

import (
	"fmt"

	"github.com/kvasilyev/pdfsearch/internal/core/domain"
	"github.com/kvasilyev/pdfsearch/internal/core/ports"
)

const unknownSource = "Unknown"

type textDoc struct {
	SourceFile string `firestore:"source_file"`
	Page       int    `firestore:"page"`
	Content    string `firestore:"content"`
}

type imageDoc struct {
	SourceFile  string `firestore:"source_file"`
	Page        int    `firestore:"page"`
	ImagePath   string `firestore:"image_path"`
	Description string `firestore:"description"`
}

type videoDoc struct {
	Title       string `firestore:"title"`
	Description string `firestore:"description"`
	VideoURL    string `firestore:"video_url"`
	Duration    string `firestore:"duration"`
	Views       int    `firestore:"views"`
}

func toTextCandidate(raw textDoc) domain.Candidate {
	return domain.Candidate{
		Type:    domain.CandidateText,
		Source:  sourceOrDefault(raw.SourceFile),
		Page:    raw.Page,
		Content: raw.Content,
	}
}

// toImageCandidate reports false when the record cannot produce a servable
// image: no stored path, or a path the resolver refuses to publish.
func toImageCandidate(raw imageDoc, resolver ports.PublicURLResolver) (domain.Candidate, bool) {
	if raw.ImagePath == "" {
		return domain.Candidate{}, false
	}
	url, ok := resolver.ResolvePublicURL(raw.ImagePath)
	if !ok {
		return domain.Candidate{}, false
	}

	desc := raw.Description
	if desc == "" {
		source := raw.SourceFile
		if source == "" {
			source = "unknown document"
		}
		desc = fmt.Sprintf("Image from %s page %d", source, raw.Page)
	}

	return domain.Candidate{
		Type:        domain.CandidateImage,
		Source:      sourceOrDefault(raw.SourceFile),
		Page:        raw.Page,
		Description: desc,
		ImageURL:    url,
	}, true
}

func toVideoCandidate(raw videoDoc) domain.Candidate {
	return domain.Candidate{
		Type:        domain.CandidateVideo,
		Title:       raw.Title,
		Description: raw.Description,
		VideoURL:    raw.VideoURL,
		Duration:    raw.Duration,
		Views:       raw.Views,
	}
}

func sourceOrDefault(source string) string {
	if source == "" {
		return unknownSource
	}
	return source
}
