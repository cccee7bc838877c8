package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
)

type assistantStub struct {
	answer *domain.Answer
	err    error

	gotQuestion string
	gotHistory  domain.History
}

func (s *assistantStub) Answer(_ context.Context, question string, history domain.History) (*domain.Answer, error) {
	s.gotQuestion = question
	s.gotHistory = history
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

type adminStub struct {
	doc         *domain.Document
	registerErr error
	clearErr    error

	gotSourceType domain.SourceType
	gotSource     string
	cleared       bool
}

func (s *adminStub) Register(_ context.Context, sourceType domain.SourceType, source string) (*domain.Document, error) {
	s.gotSourceType = sourceType
	s.gotSource = source
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return s.doc, nil
}

func (s *adminStub) ClearAll(context.Context) error {
	s.cleared = true
	return s.clearErr
}

type registryStub struct {
	doc *domain.Document
	err error
}

func (s *registryStub) Create(context.Context, *domain.Document) error { return nil }

func (s *registryStub) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

func (s *registryStub) UpdateStatus(context.Context, string, domain.DocumentStatus, string) error {
	return nil
}
func (s *registryStub) SetSegmentCount(context.Context, string, int) error { return nil }
func (s *registryStub) DeleteAll(context.Context) error                    { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(assistant *assistantStub, admin *adminStub, registry *registryStub) http.Handler {
	rt := NewRouter(assistant, admin, registry, nil, quietLogger(), RouterOptions{})
	return rt.Handler()
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestChatReturnsAnswerWithSources(t *testing.T) {
	assistant := &assistantStub{
		answer: &domain.Answer{
			Text: "MA covers doctor visits.",
			Sources: []domain.Segment{
				{Text: "covered services", Metadata: domain.SegmentMetadata{DocumentID: "d", SegmentIndex: 0}},
			},
		},
	}
	handler := newTestRouter(assistant, &adminStub{}, &registryStub{})

	res := postJSON(t, handler, "/v1/chat", map[string]any{
		"question": "What does MA cover?",
		"history":  []string{"User: hi", "Assistant: hello"},
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var resp chatResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answer != "MA covers doctor visits." {
		t.Fatalf("unexpected answer %q", resp.Answer)
	}
	if len(resp.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(resp.Sources))
	}
	if assistant.gotQuestion != "What does MA cover?" || len(assistant.gotHistory) != 2 {
		t.Fatalf("assistant received question=%q history=%d", assistant.gotQuestion, len(assistant.gotHistory))
	}
}

func TestChatEmptyQuestionRejected(t *testing.T) {
	handler := newTestRouter(&assistantStub{}, &adminStub{}, &registryStub{})

	res := postJSON(t, handler, "/v1/chat", map[string]any{"question": "   "})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestChatGenerationFailureReturns500WithoutDetails(t *testing.T) {
	assistant := &assistantStub{err: errors.New("generate answer: model exploded")}
	handler := newTestRouter(assistant, &adminStub{}, &registryStub{})

	res := postJSON(t, handler, "/v1/chat", map[string]any{"question": "q"})
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	if strings.Contains(res.Body.String(), "exploded") {
		t.Fatalf("upstream details leaked into response: %s", res.Body.String())
	}
}

func TestChatTemporaryFailureReturns503(t *testing.T) {
	assistant := &assistantStub{err: domain.WrapError(domain.ErrTemporary, "answer", errors.New("breaker open"))}
	handler := newTestRouter(assistant, &adminStub{}, &registryStub{})

	res := postJSON(t, handler, "/v1/chat", map[string]any{"question": "q"})
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestRegisterDocumentByURL(t *testing.T) {
	admin := &adminStub{doc: &domain.Document{ID: "doc-1", Status: domain.StatusRegistered}}
	handler := newTestRouter(&assistantStub{}, admin, &registryStub{})

	res := postJSON(t, handler, "/v1/documents", map[string]any{"url": "https://mn.gov/dhs/ma"})
	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	if admin.gotSourceType != domain.SourceURL || admin.gotSource != "https://mn.gov/dhs/ma" {
		t.Fatalf("admin received %q %q", admin.gotSourceType, admin.gotSource)
	}
}

func TestRegisterDocumentByPath(t *testing.T) {
	admin := &adminStub{doc: &domain.Document{ID: "doc-2", Status: domain.StatusRegistered}}
	handler := newTestRouter(&assistantStub{}, admin, &registryStub{})

	res := postJSON(t, handler, "/v1/documents", map[string]any{"path": "/data/handbook.pdf"})
	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", res.Code)
	}
	if admin.gotSourceType != domain.SourceFile {
		t.Fatalf("expected file source type, got %q", admin.gotSourceType)
	}
}

func TestRegisterDocumentMissingSource(t *testing.T) {
	handler := newTestRouter(&assistantStub{}, &adminStub{}, &registryStub{})

	res := postJSON(t, handler, "/v1/documents", map[string]any{})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	registry := &registryStub{err: domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id x"))}
	handler := newTestRouter(&assistantStub{}, &adminStub{}, registry)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/x", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetDocumentByID(t *testing.T) {
	registry := &registryStub{doc: &domain.Document{ID: "doc-1", Status: domain.StatusReady}}
	handler := newTestRouter(&assistantStub{}, &adminStub{}, registry)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var doc domain.Document
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.ID != "doc-1" || doc.Status != domain.StatusReady {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestDeleteDocumentsClearsAll(t *testing.T) {
	admin := &adminStub{}
	handler := newTestRouter(&assistantStub{}, admin, &registryStub{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/documents", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if !admin.cleared {
		t.Fatalf("expected ClearAll to be called")
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	handler := newTestRouter(&assistantStub{}, &adminStub{}, &registryStub{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id header")
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "given-id")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Header().Get(requestIDHeader) != "given-id" {
		t.Fatalf("expected request id to be propagated, got %q", res.Header().Get(requestIDHeader))
	}
}
