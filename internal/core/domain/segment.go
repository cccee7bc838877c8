package domain

import (
	"fmt"
	"hash/fnv"
)

// SegmentMetadata is attached to a segment at ingestion time and never
// mutated afterwards. SegmentIndex is -1 when the position is unknown.
type SegmentMetadata struct {
	DocumentID   string `json:"document_id"`
	SegmentIndex int    `json:"segment_index"`
	Source       string `json:"source"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	LoadedAt     string `json:"loaded_at,omitempty"`
}

// Segment is one retrievable unit of source-document text.
type Segment struct {
	Text     string          `json:"text"`
	Metadata SegmentMetadata `json:"metadata"`
}

// Key derives the dedup identity of a segment. Two segments with equal keys
// are the same retrieval result regardless of which query produced them.
func (s Segment) Key() string {
	id := s.Metadata.DocumentID
	if id == "" {
		id = s.Metadata.Source
	}
	if s.Metadata.SegmentIndex >= 0 {
		return fmt.Sprintf("%s:%d", id, s.Metadata.SegmentIndex)
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(s.Text))
	return fmt.Sprintf("%s:h%x", id, h.Sum64())
}

// Match is a scored search hit from the vector store. Score is a similarity,
// higher means more relevant.
type Match struct {
	Segment Segment `json:"segment"`
	Score   float64 `json:"score"`
}

// RetrievalResult accumulates segments across the whole query set, keyed by
// segment identity. Insertion order is the order each key was first seen;
// later duplicates are dropped.
type RetrievalResult struct {
	keys     []string
	segments map[string]Segment
}

func NewRetrievalResult() *RetrievalResult {
	return &RetrievalResult{segments: make(map[string]Segment)}
}

// Add inserts the segment unless its key is already present. Returns true
// when the segment was actually added.
func (r *RetrievalResult) Add(segment Segment) bool {
	key := segment.Key()
	if _, ok := r.segments[key]; ok {
		return false
	}
	r.keys = append(r.keys, key)
	r.segments[key] = segment
	return true
}

func (r *RetrievalResult) Len() int {
	return len(r.keys)
}

func (r *RetrievalResult) Empty() bool {
	return len(r.keys) == 0
}

// Segments returns the accumulated segments in insertion order.
func (r *RetrievalResult) Segments() []Segment {
	out := make([]Segment, 0, len(r.keys))
	for _, key := range r.keys {
		out = append(out, r.segments[key])
	}
	return out
}

// Answer is the caller-facing result of one pipeline invocation.
type Answer struct {
	Text    string    `json:"text"`
	Sources []Segment `json:"sources,omitempty"`
}
