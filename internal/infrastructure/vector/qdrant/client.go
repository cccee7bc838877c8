package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
	"github.com/mncare/medicaid-assistant/internal/infrastructure/resilience"
)

// Client talks to the Qdrant HTTP API for one collection.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	executor   *resilience.Executor

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

type Options struct {
	Timeout  time.Duration
	Executor *resilience.Executor
}

func New(baseURL, collection string) *Client {
	return NewWithOptions(baseURL, collection, Options{})
}

func NewWithOptions(baseURL, collection string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.Executor,
	}
}

// Add upserts segments with their vectors. Point ids are random; identity
// for retrieval dedup lives in the payload, not in the point id.
func (c *Client) Add(ctx context.Context, vectors [][]float32, segments []domain.Segment) error {
	if len(segments) == 0 || len(vectors) == 0 {
		return nil
	}
	if len(segments) != len(vectors) {
		return fmt.Errorf("segments/vectors mismatch: %d/%d", len(segments), len(vectors))
	}

	if err := c.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(segments))
	for i, segment := range segments {
		points = append(points, point{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Payload: map[string]any{
				"document_id":   segment.Metadata.DocumentID,
				"segment_index": segment.Metadata.SegmentIndex,
				"source":        segment.Metadata.Source,
				"title":         segment.Metadata.Title,
				"category":      segment.Metadata.Category,
				"loaded_at":     segment.Metadata.LoadedAt,
				"text":          segment.Text,
			},
		})
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", c.collection)
	return c.do(ctx, "upsert", http.MethodPut, path, map[string]any{"points": points}, nil)
}

// RemoveAll deletes every point in the collection.
func (c *Client) RemoveAll(ctx context.Context) error {
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", c.collection)
	return c.do(ctx, "delete", http.MethodPost, path, map[string]any{"filter": map[string]any{}}, nil)
}

// Search runs a similarity query and maps payloads back to segments. Matches
// come back ordered by descending score; minScore is enforced server-side.
func (c *Client) Search(ctx context.Context, queryVector []float32, maxResults int, minScore float64) ([]domain.Match, error) {
	request := map[string]any{
		"vector":       queryVector,
		"limit":        maxResults,
		"with_payload": true,
	}
	if minScore > 0 {
		request["score_threshold"] = minScore
	}

	var response struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	path := fmt.Sprintf("/collections/%s/points/search", c.collection)
	if err := c.do(ctx, "search", http.MethodPost, path, request, &response); err != nil {
		return nil, err
	}

	out := make([]domain.Match, 0, len(response.Result))
	for _, r := range response.Result {
		out = append(out, domain.Match{
			Score: r.Score,
			Segment: domain.Segment{
				Text: payloadString(r.Payload, "text"),
				Metadata: domain.SegmentMetadata{
					DocumentID:   payloadString(r.Payload, "document_id"),
					SegmentIndex: payloadInt(r.Payload, "segment_index"),
					Source:       payloadString(r.Payload, "source"),
					Title:        payloadString(r.Payload, "title"),
					Category:     payloadString(r.Payload, "category"),
					LoadedAt:     payloadString(r.Payload, "loaded_at"),
				},
			},
		})
	}
	return out, nil
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	request := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}

	err := c.do(ctx, "ensure_collection", http.MethodPut, "/collections/"+c.collection, request, nil)
	var statusErr *HTTPStatusError
	// 409 means the collection already exists.
	if err != nil && asStatusError(err, &statusErr) && statusErr.StatusCode == http.StatusConflict {
		err = nil
	}
	if err != nil {
		return err
	}

	c.ensureMu.Lock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
	c.ensureMu.Unlock()
	return nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, payload, out any) error {
	run := func(callCtx context.Context) error {
		return c.roundTrip(callCtx, operation, method, path, payload, out)
	}

	if c.executor != nil {
		return c.executor.Execute(ctx, "qdrant."+operation, run, classifyQdrantError)
	}
	return run(ctx)
}

func (c *Client) roundTrip(ctx context.Context, operation, method, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func payloadString(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func payloadInt(payload map[string]any, key string) int {
	v, ok := payload[key]
	if !ok {
		return -1
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return -1
	}
}
