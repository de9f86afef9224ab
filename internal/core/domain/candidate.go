package domain

type CandidateType string

const (
	CandidateText  CandidateType = "text"
	CandidateImage CandidateType = "image"
	CandidateVideo CandidateType = "video"
)

// Candidate is one scorable unit of content fetched for a single search
// call. The variant is picked by Type; fields of the other variants stay
// zero. Candidates are read-only snapshots and are never cached across
// requests.
type Candidate struct {
	Type   CandidateType `json:"type"`
	Source string        `json:"source"`
	Page   int           `json:"page,omitempty"`

	// text variant
	Content string `json:"content,omitempty"`

	// image variant
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`

	// video variant
	Title    string `json:"title,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	Duration string `json:"duration,omitempty"`
	Views    int    `json:"views,omitempty"`
}

// SearchableText is the string the scorer runs against for this variant.
func (c Candidate) SearchableText() string {
	switch c.Type {
	case CandidateText:
		return c.Content
	case CandidateImage:
		return c.Description
	case CandidateVideo:
		return c.Title + " " + c.Description
	default:
		return ""
	}
}

type ScoredCandidate struct {
	Candidate
	Score float64 `json:"score"`
}
