package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
	"github.com/mncare/medicaid-assistant/internal/core/ports"
	"github.com/mncare/medicaid-assistant/internal/observability/metrics"
)

// Router exposes the assistant and the knowledge-base admin surface.
type Router struct {
	assistant ports.Assistant
	admin     ports.DocumentAdmin
	registry  ports.DocumentRegistry
	metrics   *metrics.HTTPServerMetrics
	logger    *slog.Logger

	rateLimitRPS     float64
	rateLimitBurst   int
	maxConcurrent    int
	backpressureWait time.Duration
}

type RouterOptions struct {
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxConcurrent    int
	BackpressureWait time.Duration
}

func NewRouter(
	assistant ports.Assistant,
	admin ports.DocumentAdmin,
	registry ports.DocumentRegistry,
	m *metrics.HTTPServerMetrics,
	logger *slog.Logger,
	options RouterOptions,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		assistant:        assistant,
		admin:            admin,
		registry:         registry,
		metrics:          m,
		logger:           logger,
		rateLimitRPS:     options.RateLimitRPS,
		rateLimitBurst:   options.RateLimitBurst,
		maxConcurrent:    options.MaxConcurrent,
		backpressureWait: options.BackpressureWait,
	}
}

const serviceName = "api"

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chat", rt.chat)
	mux.HandleFunc("/v1/documents", rt.documents)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	if rt.maxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.maxConcurrent, rt.backpressureWait)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	Question string   `json:"question"`
	History  []string `json:"history"`
}

type chatResponse struct {
	Answer  string           `json:"answer"`
	Sources []domain.Segment `json:"sources,omitempty"`
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	start := time.Now()
	answer, err := rt.assistant.Answer(r.Context(), req.Question, domain.History(req.History))
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		rt.logger.Error("chat_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		writeError(w, status, publicErrorMessage(status))
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordRAGObservation(serviceName, "/v1/chat", len(answer.Sources), time.Since(start))
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Answer:  answer.Text,
		Sources: answer.Sources,
	})
}

type registerRequest struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

func (rt *Router) documents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.registerDocument(w, r)
	case http.MethodDelete:
		rt.clearDocuments(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (rt *Router) registerDocument(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sourceType := domain.SourceURL
	source := strings.TrimSpace(req.URL)
	if source == "" {
		sourceType = domain.SourceFile
		source = strings.TrimSpace(req.Path)
	}
	if source == "" {
		writeError(w, http.StatusBadRequest, "either url or path is required")
		return
	}

	doc, err := rt.admin.Register(r.Context(), sourceType, source)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		rt.logger.Error("register_document_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		writeError(w, status, publicErrorMessage(status))
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) clearDocuments(w http.ResponseWriter, r *http.Request) {
	if err := rt.admin.ClearAll(r.Context()); err != nil {
		status := mapErrorToHTTPStatus(err)
		rt.logger.Error("clear_documents_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		writeError(w, status, publicErrorMessage(status))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "document id is required")
		return
	}

	doc, err := rt.registry.GetByID(r.Context(), id)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		if status != http.StatusNotFound {
			rt.logger.Error("get_document_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		}
		writeError(w, status, publicErrorMessage(status))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
