package ports

import (
	"context"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
)

// Embedder maps text to fixed-length vectors. Embed is the batch form used
// during ingestion; EmbedQuery embeds a single search query.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore persists (segment, vector) pairs and answers similarity
// queries. Search returns matches ordered by descending score; minScore
// filters out weak hits.
type VectorStore interface {
	Add(ctx context.Context, vectors [][]float32, segments []domain.Segment) error
	RemoveAll(ctx context.Context) error
	Search(ctx context.Context, queryVector []float32, maxResults int, minScore float64) ([]domain.Match, error)
}

// CompletionModel maps a prompt to a completion. No structured output is
// assumed; callers parse the raw text themselves.
type CompletionModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// DocumentLoader fetches and cleans one source into a plain-text document.
type DocumentLoader interface {
	Load(ctx context.Context, sourceType domain.SourceType, source string) (*domain.Document, error)
}

// Chunker splits cleaned document text into ordered segments.
type Chunker interface {
	Split(text string) []string
}

// DocumentRegistry persists document metadata and ingestion state.
type DocumentRegistry interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SetSegmentCount(ctx context.Context, id string, count int) error
	DeleteAll(ctx context.Context) error
}

// IngestQueue publishes/consumes document ingestion events.
type IngestQueue interface {
	PublishDocumentRegistered(ctx context.Context, documentID string) error
	SubscribeDocumentRegistered(ctx context.Context, handler func(context.Context, string) error) error
}
