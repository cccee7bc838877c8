package ports

import (
	"context"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
)

// Assistant is the inbound contract for conversational question answering.
// Answer never fails on "no relevant documents"; it returns the fixed
// fallback text instead. It does fail when final answer generation fails.
type Assistant interface {
	Answer(ctx context.Context, question string, history domain.History) (*domain.Answer, error)
}

// DocumentAdmin is the inbound contract for knowledge-base administration.
type DocumentAdmin interface {
	Register(ctx context.Context, sourceType domain.SourceType, source string) (*domain.Document, error)
	ClearAll(ctx context.Context) error
}

// DocumentProcessor ingests a registered document asynchronously. On success
// it reports how many segments were indexed and when the document was
// registered, so callers can observe indexing volume and queue lag.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) (*domain.IngestStats, error)
}
