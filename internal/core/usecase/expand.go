package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
	"github.com/mncare/medicaid-assistant/internal/core/ports"
)

// QueryExpander generates alternative standalone search queries for a user
// question. Follow-up questions get rewritten against the recent conversation;
// acronyms get expanded. The original question is always the first query.
type QueryExpander struct {
	model         ports.CompletionModel
	logger        *slog.Logger
	maxRewrites   int
	historyWindow int

	// OnRewriteFailure, when set, is invoked once per degraded expansion.
	OnRewriteFailure func()
}

func NewQueryExpander(model ports.CompletionModel, logger *slog.Logger, maxRewrites, historyWindow int) *QueryExpander {
	if maxRewrites <= 0 {
		maxRewrites = 3
	}
	if historyWindow <= 0 {
		historyWindow = 6
	}
	return &QueryExpander{
		model:         model,
		logger:        logger,
		maxRewrites:   maxRewrites,
		historyWindow: historyWindow,
	}
}

// Expand returns the search-query set for one question. A failed rewrite call
// degrades to the original question alone; reduced recall, never an error.
func (e *QueryExpander) Expand(ctx context.Context, question string, history domain.History) []string {
	queries := []string{question}

	raw, err := e.model.Complete(ctx, buildRewritePrompt(question, history.Window(e.historyWindow)))
	if err != nil {
		e.logger.Warn("query_rewrite_failed", "error", err)
		if e.OnRewriteFailure != nil {
			e.OnRewriteFailure()
		}
		return queries
	}

	for _, rewrite := range parseRewrites(raw, e.maxRewrites) {
		if strings.EqualFold(rewrite, question) {
			continue
		}
		if containsExact(queries[1:], rewrite) {
			continue
		}
		queries = append(queries, rewrite)
	}
	return queries
}

func buildRewritePrompt(question string, history domain.History) string {
	conversation := "(none provided)"
	if len(history) > 0 {
		conversation = strings.Join(history, "\n")
	}

	return fmt.Sprintf(`You rewrite search queries for a Minnesota Medicaid documentation retrieval system.

Generate up to three alternative standalone search queries for the question below.
- If the question refers back to the conversation, resolve those references so each query stands on its own.
- Expand Medicaid acronyms (for example MA, MSHO, SNBC) when it helps retrieval.
- One query per line. No numbering, no bullets, no commentary.
- If the question is already self-contained and specific, return it unchanged.

Conversation:
%s

Question:
%s`, conversation, question)
}

// parseRewrites turns raw model output into a capped, deduplicated list of
// rewrites. List markers the model adds despite instructions are stripped.
func parseRewrites(raw string, limit int) []string {
	out := make([]string, 0, limit)
	for _, line := range strings.Split(raw, "\n") {
		if len(out) == limit {
			break
		}
		rewrite := stripListMarker(strings.TrimSpace(line))
		if rewrite == "" {
			continue
		}
		if containsExact(out, rewrite) {
			continue
		}
		out = append(out, rewrite)
	}
	return out
}

func stripListMarker(line string) string {
	for _, bullet := range []string{"- ", "* ", "• "} {
		if rest, ok := strings.CutPrefix(line, bullet); ok {
			return strings.TrimSpace(rest)
		}
	}

	digits := 0
	for digits < len(line) && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(line) && line[digits] == '.' {
		return strings.TrimSpace(line[digits+1:])
	}
	return line
}

func containsExact(list []string, candidate string) bool {
	for _, item := range list {
		if item == candidate {
			return true
		}
	}
	return false
}
