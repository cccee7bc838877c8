package usecase

import (
	"context"
	"log/slog"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
	"github.com/mncare/medicaid-assistant/internal/core/ports"
)

// Retriever runs every candidate query against the vector store and merges
// the hits into one deduplicated, insertion-ordered result.
type Retriever struct {
	embedder ports.Embedder
	store    ports.VectorStore
	logger   *slog.Logger
	topK     int
	minScore float64
}

func NewRetriever(embedder ports.Embedder, store ports.VectorStore, logger *slog.Logger, topK int, minScore float64) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	if minScore <= 0 {
		minScore = 0.65
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		logger:   logger,
		topK:     topK,
		minScore: minScore,
	}
}

// Retrieve never fails: a backend error for one query is logged and that
// query skipped, so the remaining queries still contribute. The result may
// be empty.
func (r *Retriever) Retrieve(ctx context.Context, queries []string) *domain.RetrievalResult {
	result := domain.NewRetrievalResult()

	for _, query := range queries {
		vector, err := r.embedder.EmbedQuery(ctx, query)
		if err != nil {
			r.logger.Warn("embed_query_failed", "query", query, "error", err)
			continue
		}

		matches, err := r.store.Search(ctx, vector, r.topK, r.minScore)
		if err != nil {
			r.logger.Warn("vector_search_failed", "query", query, "error", err)
			continue
		}

		for _, match := range matches {
			if match.Score < r.minScore {
				continue
			}
			result.Add(match.Segment)
		}
	}

	return result
}
