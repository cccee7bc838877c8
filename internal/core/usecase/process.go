package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
	"github.com/mncare/medicaid-assistant/internal/core/ports"
)

// embedBatchSize bounds how many segments go into one embedding call.
const embedBatchSize = 32

// ProcessDocumentUseCase turns a registered source into indexed segments:
// load, split, embed, add to the vector store.
type ProcessDocumentUseCase struct {
	registry ports.DocumentRegistry
	loader   ports.DocumentLoader
	chunker  ports.Chunker
	embedder ports.Embedder
	store    ports.VectorStore
	limiter  *rate.Limiter
}

func NewProcessDocumentUseCase(
	registry ports.DocumentRegistry,
	loader ports.DocumentLoader,
	chunker ports.Chunker,
	embedder ports.Embedder,
	store ports.VectorStore,
	limiter *rate.Limiter,
) *ProcessDocumentUseCase {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &ProcessDocumentUseCase{
		registry: registry,
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		limiter:  limiter,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) (*domain.IngestStats, error) {
	if err := uc.registry.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return nil, fmt.Errorf("set status=processing: %w", err)
	}

	stats, err := uc.ingest(ctx, documentID)
	if err != nil {
		if failErr := uc.registry.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return nil, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return nil, err
	}

	if err := uc.registry.SetSegmentCount(ctx, documentID, stats.SegmentCount); err != nil {
		return nil, fmt.Errorf("save segment count: %w", err)
	}
	if err := uc.registry.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return nil, fmt.Errorf("set status=ready: %w", err)
	}
	return stats, nil
}

func (uc *ProcessDocumentUseCase) ingest(ctx context.Context, documentID string) (*domain.IngestStats, error) {
	record, err := uc.registry.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}

	doc, err := uc.loader.Load(ctx, record.SourceType, record.Source)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	chunks := uc.chunker.Split(doc.Content)
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "split document", errors.New("splitting produced zero segments"))
	}

	segments := buildSegments(doc, chunks)
	vectors, err := uc.embedSegments(ctx, chunks)
	if err != nil {
		return nil, err
	}

	if err := uc.store.Add(ctx, vectors, segments); err != nil {
		return nil, fmt.Errorf("add segments to vector store: %w", err)
	}
	return &domain.IngestStats{
		SegmentCount: len(segments),
		RegisteredAt: record.CreatedAt,
	}, nil
}

func (uc *ProcessDocumentUseCase) embedSegments(ctx context.Context, chunks []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		if err := uc.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("embedding rate limit: %w", err)
		}
		batch, err := uc.embedder.Embed(ctx, chunks[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed segments: %w", err)
		}
		vectors = append(vectors, batch...)
	}

	if len(vectors) != len(chunks) {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"embed segments",
			fmt.Errorf("vectors/segments mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}
	return vectors, nil
}

func buildSegments(doc *domain.Document, chunks []string) []domain.Segment {
	docID := stableDocumentID(doc)
	segments := make([]domain.Segment, 0, len(chunks))
	for i, chunk := range chunks {
		segments = append(segments, domain.Segment{
			Text: chunk,
			Metadata: domain.SegmentMetadata{
				DocumentID:   docID,
				SegmentIndex: i,
				Source:       doc.Source,
				Title:        doc.Title,
				Category:     doc.Category,
				LoadedAt:     doc.LoadedAt,
			},
		})
	}
	return segments
}

// stableDocumentID derives the segment-level document identity from source
// and title only, so re-ingesting an updated document at the same location
// keeps the same identity.
func stableDocumentID(doc *domain.Document) string {
	cleanTitle := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, doc.Title)
	return doc.Source + "_" + cleanTitle
}
