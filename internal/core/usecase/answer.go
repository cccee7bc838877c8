package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
	"github.com/mncare/medicaid-assistant/internal/core/ports"
)

// FallbackAnswer is returned whenever retrieval produces no context. It is a
// defined branch, not an error; no completion call is made for it.
const FallbackAnswer = "I'm sorry, I couldn't find relevant information about your query in the Minnesota Medicaid documentation. " +
	"Please try rephrasing your question or contact the Minnesota Department of Human Services for assistance."

// AnswerUseCase is the RAG pipeline: expand the question into a query set,
// retrieve and deduplicate context, compose the prompt and generate one
// answer. It holds no per-call state; concurrent calls are safe.
type AnswerUseCase struct {
	expander  *QueryExpander
	retriever *Retriever
	model     ports.CompletionModel
	logger    *slog.Logger
}

func NewAnswerUseCase(expander *QueryExpander, retriever *Retriever, model ports.CompletionModel, logger *slog.Logger) *AnswerUseCase {
	return &AnswerUseCase{
		expander:  expander,
		retriever: retriever,
		model:     model,
		logger:    logger,
	}
}

// Answer runs one full pipeline pass. A generation failure propagates to the
// caller; everything before generation degrades gracefully.
func (uc *AnswerUseCase) Answer(ctx context.Context, question string, history domain.History) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer", errors.New("question is empty"))
	}

	queries := uc.expander.Expand(ctx, question, history)
	result := uc.retriever.Retrieve(ctx, queries)

	if result.Empty() {
		uc.logger.Info("rag_no_context", "queries", len(queries))
		return &domain.Answer{Text: FallbackAnswer}, nil
	}

	prompt := composeAnswerPrompt(BuildContext(result), question, history)
	text, err := uc.model.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	uc.logger.Info("rag_answered", "queries", len(queries), "segments", result.Len())
	return &domain.Answer{
		Text:    text,
		Sources: result.Segments(),
	}, nil
}
