package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Document tracks one ingested PDF through the extraction pipeline.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Status      DocumentStatus `json:"status"`
	Pages       int            `json:"pages,omitempty"`
	Images      int            `json:"images,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ExtractionStats summarizes what the worker pulled out of one document.
type ExtractionStats struct {
	Pages  int `json:"pages"`
	Images int `json:"images"`
}

// Page is one extracted PDF page: its text plus any embedded images.
type Page struct {
	Number int
	Text   string
	Images []EmbeddedImage
}

// EmbeddedImage is a raw image pulled out of a page's XObjects.
type EmbeddedImage struct {
	Index  int
	Format string
	Data   []byte
}

// PageText is a text artifact persisted for search.
type PageText struct {
	SourceFile string
	Page       int
	Content    string
}

// PageImage is an image artifact persisted for search. ImagePath is the
// object-store key; Description comes from the vision service or a
// synthesized fallback.
type PageImage struct {
	SourceFile  string
	Page        int
	Index       int
	ImagePath   string
	Description string
	Format      string
}
