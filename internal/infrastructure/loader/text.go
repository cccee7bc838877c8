package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
)

func loadText(path string) (*domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file %q: %w", path, err)
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, fmt.Errorf("text file %q is empty", path)
	}

	return newDocument(titleFromPath(path), text, "text", domain.SourceFile, path), nil
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
