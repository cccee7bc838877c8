package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
)

type retrieveEmbedderFake struct {
	queries []string
	failOn  map[string]bool
}

func (f *retrieveEmbedderFake) Embed(context.Context, []string) ([][]float32, error) {
	return nil, nil
}

func (f *retrieveEmbedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.queries = append(f.queries, text)
	if f.failOn[text] {
		return nil, errors.New("embed fail")
	}
	return []float32{float32(len(f.queries)), 0.5}, nil
}

type retrieveStoreFake struct {
	responses [][]domain.Match
	errs      []error
	calls     int
	minScore  float64
}

func (f *retrieveStoreFake) Add(context.Context, [][]float32, []domain.Segment) error { return nil }
func (f *retrieveStoreFake) RemoveAll(context.Context) error                          { return nil }

func (f *retrieveStoreFake) Search(_ context.Context, _ []float32, _ int, minScore float64) ([]domain.Match, error) {
	call := f.calls
	f.calls++
	f.minScore = minScore
	if call < len(f.errs) && f.errs[call] != nil {
		return nil, f.errs[call]
	}
	if call >= len(f.responses) {
		return nil, nil
	}
	return f.responses[call], nil
}

func segment(docID string, index int, text string) domain.Segment {
	return domain.Segment{
		Text: text,
		Metadata: domain.SegmentMetadata{
			DocumentID:   docID,
			SegmentIndex: index,
			Source:       "https://mn.gov/dhs/" + docID,
			Title:        docID,
			Category:     "web",
		},
	}
}

func TestRetrieveDeduplicatesFirstSeenWins(t *testing.T) {
	store := &retrieveStoreFake{
		responses: [][]domain.Match{
			{
				{Segment: segment("doc-1", 0, "first seen"), Score: 0.9},
				{Segment: segment("doc-2", 0, "b"), Score: 0.8},
			},
			{
				{Segment: segment("doc-1", 0, "later duplicate"), Score: 0.95},
				{Segment: segment("doc-3", 1, "c"), Score: 0.7},
			},
		},
	}
	retriever := NewRetriever(&retrieveEmbedderFake{}, store, testLogger(), 5, 0.65)

	result := retriever.Retrieve(context.Background(), []string{"q1", "q2"})
	segments := result.Segments()
	if len(segments) != 3 {
		t.Fatalf("expected 3 deduplicated segments, got %d", len(segments))
	}
	if segments[0].Text != "first seen" {
		t.Fatalf("expected first-seen segment to win, got %q", segments[0].Text)
	}
	if segments[1].Metadata.DocumentID != "doc-2" || segments[2].Metadata.DocumentID != "doc-3" {
		t.Fatalf("expected insertion order doc-2, doc-3, got %v", segments)
	}
}

func TestRetrieveSkipsFailedQueries(t *testing.T) {
	embedder := &retrieveEmbedderFake{failOn: map[string]bool{"q1": true}}
	store := &retrieveStoreFake{
		errs: []error{errors.New("search down"), nil},
		responses: [][]domain.Match{
			nil,
			{{Segment: segment("doc-9", 0, "survivor"), Score: 0.8}},
		},
	}
	retriever := NewRetriever(embedder, store, testLogger(), 5, 0.65)

	result := retriever.Retrieve(context.Background(), []string{"q1", "q2", "q3"})
	if result.Len() != 1 {
		t.Fatalf("expected 1 segment from the surviving query, got %d", result.Len())
	}
	if result.Segments()[0].Metadata.DocumentID != "doc-9" {
		t.Fatalf("unexpected segment %v", result.Segments()[0])
	}
}

func TestRetrieveFiltersBelowThreshold(t *testing.T) {
	store := &retrieveStoreFake{
		responses: [][]domain.Match{
			{
				{Segment: segment("doc-1", 0, "strong"), Score: 0.8},
				{Segment: segment("doc-2", 0, "weak"), Score: 0.4},
			},
		},
	}
	retriever := NewRetriever(&retrieveEmbedderFake{}, store, testLogger(), 5, 0.65)

	result := retriever.Retrieve(context.Background(), []string{"q"})
	if result.Len() != 1 {
		t.Fatalf("expected weak match filtered out, got %d segments", result.Len())
	}
	if store.minScore != 0.65 {
		t.Fatalf("expected threshold passed to store, got %v", store.minScore)
	}
}

func TestRetrieveEmptyWhenEverythingFails(t *testing.T) {
	embedder := &retrieveEmbedderFake{failOn: map[string]bool{"q1": true, "q2": true}}
	retriever := NewRetriever(embedder, &retrieveStoreFake{}, testLogger(), 5, 0.65)

	result := retriever.Retrieve(context.Background(), []string{"q1", "q2"})
	if !result.Empty() {
		t.Fatalf("expected empty result, got %d", result.Len())
	}
}
