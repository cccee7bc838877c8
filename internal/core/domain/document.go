package domain

import "time"

type DocumentStatus string

const (
	StatusRegistered DocumentStatus = "registered"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

type SourceType string

const (
	SourceURL  SourceType = "url"
	SourceFile SourceType = "file"
)

// IngestStats summarizes one completed ingestion run.
type IngestStats struct {
	SegmentCount int
	RegisteredAt time.Time
}

// Document is a loaded source document before splitting. Category is the
// detected content kind (web, pdf, text).
type Document struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Content      string         `json:"content,omitempty"`
	Category     string         `json:"category"`
	SourceType   SourceType     `json:"source_type"`
	Source       string         `json:"source"`
	Status       DocumentStatus `json:"status"`
	Error        string         `json:"error,omitempty"`
	SegmentCount int            `json:"segment_count"`
	LoadedAt     string         `json:"loaded_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
