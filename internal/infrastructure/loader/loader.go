package loader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
)

// Loader turns a registered source into a cleaned plain-text document.
// URLs go through readability extraction; files are dispatched on extension.
type Loader struct {
	web *webFetcher
}

func New() *Loader {
	return &Loader{web: newWebFetcher()}
}

func (l *Loader) Load(ctx context.Context, sourceType domain.SourceType, source string) (*domain.Document, error) {
	switch sourceType {
	case domain.SourceURL:
		return l.web.fetch(ctx, source)
	case domain.SourceFile:
		return loadFile(source)
	default:
		return nil, domain.WrapError(domain.ErrUnsupportedSource, "load document", fmt.Errorf("source type %q", sourceType))
	}
}

func loadFile(path string) (*domain.Document, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return loadPDF(path)
	case strings.HasSuffix(lower, ".txt"), strings.HasSuffix(lower, ".md"):
		return loadText(path)
	default:
		return nil, domain.WrapError(domain.ErrUnsupportedSource, "load file", fmt.Errorf("unsupported extension in %q", path))
	}
}

func newDocument(title, content, category string, sourceType domain.SourceType, source string) *domain.Document {
	return &domain.Document{
		Title:      title,
		Content:    content,
		Category:   category,
		SourceType: sourceType,
		Source:     source,
		LoadedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}
