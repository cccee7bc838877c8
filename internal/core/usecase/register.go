package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
	"github.com/mncare/medicaid-assistant/internal/core/ports"
)

// RegisterDocumentUseCase records a source in the registry and queues it for
// ingestion. Loading and indexing happen asynchronously in the worker.
type RegisterDocumentUseCase struct {
	registry ports.DocumentRegistry
	store    ports.VectorStore
	queue    ports.IngestQueue
}

func NewRegisterDocumentUseCase(registry ports.DocumentRegistry, store ports.VectorStore, queue ports.IngestQueue) *RegisterDocumentUseCase {
	return &RegisterDocumentUseCase{
		registry: registry,
		store:    store,
		queue:    queue,
	}
}

func (uc *RegisterDocumentUseCase) Register(ctx context.Context, sourceType domain.SourceType, source string) (*domain.Document, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "register document", errors.New("source is required"))
	}
	if sourceType != domain.SourceURL && sourceType != domain.SourceFile {
		return nil, domain.WrapError(domain.ErrInvalidInput, "register document", fmt.Errorf("unknown source type %q", sourceType))
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:         uuid.NewString(),
		SourceType: sourceType,
		Source:     source,
		Status:     domain.StatusRegistered,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.registry.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}
	if err := uc.queue.PublishDocumentRegistered(ctx, doc.ID); err != nil {
		// Without the event no worker will ever pick the record up, so it
		// must not stay in the registered state.
		if failErr := uc.registry.UpdateStatus(ctx, doc.ID, domain.StatusFailed, "publish ingestion event: "+err.Error()); failErr != nil {
			return nil, fmt.Errorf("publish ingestion event: %w; mark failed status: %v", err, failErr)
		}
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}
	return doc, nil
}

// ClearAll removes every stored vector and every registry record.
func (uc *RegisterDocumentUseCase) ClearAll(ctx context.Context) error {
	if err := uc.store.RemoveAll(ctx); err != nil {
		return fmt.Errorf("remove vectors: %w", err)
	}
	if err := uc.registry.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete document records: %w", err)
	}
	return nil
}
