package chunking

import (
	"strings"
	"testing"
)

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(300, 50)
	if got := s.Split("   \n  "); got != nil {
		t.Fatalf("expected nil for blank text, got %v", got)
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(300, 50)
	chunks := s.Split("Medical Assistance is Minnesota's Medicaid program.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "Medical Assistance is Minnesota's Medicaid program." {
		t.Fatalf("unexpected chunk %q", chunks[0])
	}
}

func TestSplitRespectsWordBoundaries(t *testing.T) {
	text := strings.Repeat("eligibility determination ", 100)
	s := NewSplitter(120, 20)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len([]rune(chunk)) > 120 {
			t.Fatalf("chunk %d exceeds window: %d runes", i, len([]rune(chunk)))
		}
		for _, word := range strings.Fields(chunk) {
			if word != "eligibility" && word != "determination" {
				t.Fatalf("chunk %d split a word: %q", i, word)
			}
		}
	}
}

func TestSplitOverlapCarriesText(t *testing.T) {
	text := strings.Repeat("a b c d e f g h i j ", 40)
	s := NewSplitter(100, 30)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// The tail of each chunk reappears at the head of the next one.
	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i][len(chunks[i])-10:]
		if !strings.Contains(chunks[i+1], strings.TrimSpace(tail)) {
			t.Fatalf("chunk %d tail %q not carried into next chunk", i, tail)
		}
	}
}

func TestSplitUnbrokenTokenHardCut(t *testing.T) {
	text := strings.Repeat("x", 700)
	s := NewSplitter(300, 50)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected hard cuts for unbroken token, got %d chunks", len(chunks))
	}
	if len([]rune(chunks[0])) != 300 {
		t.Fatalf("expected first chunk at hard limit, got %d", len([]rune(chunks[0])))
	}
}

func TestNewSplitterDefaults(t *testing.T) {
	s := NewSplitter(0, -1)
	if s.ChunkSize != 300 || s.Overlap != 0 {
		t.Fatalf("unexpected defaults: size=%d overlap=%d", s.ChunkSize, s.Overlap)
	}
	s = NewSplitter(40, 60)
	if s.Overlap >= s.ChunkSize {
		t.Fatalf("overlap must stay below chunk size, got %d/%d", s.Overlap, s.ChunkSize)
	}
}
