package loader

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
)

const webUserAgent = "Mozilla/5.0 (compatible; medicaid-assistant/1.0)"

var botProtectionMarkers = []string{
	"just a moment",
	"access denied",
	"cloudflare",
	"attention required",
}

type webFetcher struct {
	httpClient *http.Client
}

func newWebFetcher() *webFetcher {
	return &webFetcher{httpClient: &http.Client{Timeout: 30 * time.Second}}
}

func (f *webFetcher) fetch(ctx context.Context, rawURL string) (*domain.Document, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "fetch page", fmt.Errorf("parse url %q: %w", rawURL, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %q: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", webUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "fetch page", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, domain.WrapError(domain.ErrTemporary, "fetch page", fmt.Errorf("%s returned %s", rawURL, resp.Status))
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return nil, fmt.Errorf("extract content from %q: %w", rawURL, err)
	}

	title := strings.TrimSpace(article.Title)
	if isBotProtectionPage(title) {
		return nil, domain.WrapError(domain.ErrTemporary, "fetch page", fmt.Errorf("%s served a bot protection page (%q)", rawURL, title))
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return nil, fmt.Errorf("no readable content at %q", rawURL)
	}
	if title == "" {
		title = rawURL
	}

	return newDocument(title, text, "web", domain.SourceURL, rawURL), nil
}

// Interstitial challenge pages parse fine but carry no document content.
// Their titles are the only reliable tell.
func isBotProtectionPage(title string) bool {
	lower := strings.ToLower(title)
	for _, marker := range botProtectionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
