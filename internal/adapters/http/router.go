package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matkgb/mat-assistant/internal/core/ports"
	"github.com/matkgb/mat-assistant/internal/core/usecase"
	"github.com/matkgb/mat-assistant/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	answer  ports.AnswerService
	metrics *metrics.HTTPServerMetrics
	logger  *slog.Logger

	rateLimitRPS   float64
	rateLimitBurst int

	mu       sync.Mutex
	sessions map[string]*usecase.Session
}

type Option func(*Router)

// WithRateLimit caps request throughput; rps <= 0 disables the limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(rt *Router) {
		rt.rateLimitRPS = rps
		rt.rateLimitBurst = burst
	}
}

func NewRouter(answer ports.AnswerService, m *metrics.HTTPServerMetrics, logger *slog.Logger, opts ...Option) *Router {
	rt := &Router{
		answer:   answer,
		metrics:  m,
		logger:   logger,
		sessions: make(map[string]*usecase.Session),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chat/query", rt.chatQuery)
	mux.HandleFunc("/v1/chat/sessions/", rt.sessionHistory)
	mux.HandleFunc("/v1/corpus/stats", rt.corpusStats)
	mux.HandleFunc("/v1/system/info", rt.systemInfo)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatQueryRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type chatQueryResponse struct {
	Response    string   `json:"response"`
	Sources     []string `json:"sources"`
	ContextUsed bool     `json:"context_used"`
	KGContext   bool     `json:"kg_context"`
	SessionID   string   `json:"session_id"`
}

func (rt *Router) chatQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req chatQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	answer, err := rt.answer.Answer(r.Context(), req.Question)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		rt.logger.Error("chat query failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	session := rt.session(req.SessionID)
	session.Append(req.Question, answer)

	if rt.metrics != nil {
		fallback := answer.Response == usecase.FallbackResponse
		rt.metrics.RecordChatAnswer(serviceName, len(answer.Sources), answer.ContextUsed, answer.KGContext, fallback, time.Since(start))
	}

	writeJSON(w, http.StatusOK, chatQueryResponse{
		Response:    answer.Response,
		Sources:     answer.Sources,
		ContextUsed: answer.ContextUsed,
		KGContext:   answer.KGContext,
		SessionID:   session.ID(),
	})
}

func (rt *Router) sessionHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/chat/sessions/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session id is required"})
		return
	}

	rt.mu.Lock()
	session, ok := rt.sessions[id]
	rt.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"history":    session.History(),
	})
}

func (rt *Router) corpusStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, rt.answer.Statistics())
}

func (rt *Router) systemInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, rt.answer.SystemInfo(r.Context()))
}

// session returns the existing session or creates one, minting an ID when
// the client did not supply one.
func (rt *Router) session(id string) *usecase.Session {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if session, ok := rt.sessions[id]; ok {
		return session
	}
	session := usecase.NewSession(id)
	rt.sessions[id] = session
	return session
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
