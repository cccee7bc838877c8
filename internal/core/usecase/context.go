package usecase

import (
	"strings"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
)

// ContextDivider visually separates source passages for the language model.
const ContextDivider = "\n\n---\n\n"

// BuildContext joins the retrieved segment texts in insertion order. No
// truncation happens here; prompt-size limits are the completion client's
// concern.
func BuildContext(result *domain.RetrievalResult) string {
	segments := result.Segments()
	texts := make([]string, 0, len(segments))
	for _, segment := range segments {
		texts = append(texts, segment.Text)
	}
	return strings.Join(texts, ContextDivider)
}
