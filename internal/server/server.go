// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/morganforge/tafakkur/internal/orchestrator"
)

// Version is the server version reported by the health endpoint.
const Version = "0.1.0"

// MaxRequestBodySize caps request bodies at 1MB.
const MaxRequestBodySize = 1 << 20

// Arabic messages returned in the error envelope.
const (
	msgNotFound        = "الطريق غير موجود"
	msgBadRequestBody  = "صيغة الطلب غير صالحة"
	msgBodyTooLarge    = "حجم الطلب كبير جداً"
	msgInternalError   = "خطأ داخلي في الخادم"
	msgTooManyRequests = "تم تجاوز حد الطلبات - حاول مرة أخرى لاحقاً"
	msgServerHealthy   = "الخادم يعمل بشكل طبيعي"
	msgValidation      = "بيانات غير صالحة"
	msgHistoryNotArray = "سجل المحادثة يجب أن يكون مصفوفة"
)

// Provider status strings used by the health endpoint.
const (
	statusConnected  = "connected"
	statusMissingKey = "missing_key"
)

// Server exposes the reasoning pipeline over HTTP on localhost.
type Server struct {
	orch    *orchestrator.Orchestrator
	port    int
	cors    *CORSConfig
	limiter *RateLimiter
	router  *http.ServeMux
	srv     *http.Server
}

// Config bundles the server construction options.
type Config struct {
	// Port is the TCP port to bind on localhost.
	Port int

	// AllowedOrigins lists origins permitted by CORS.
	AllowedOrigins []string

	// RequestsPerMinute is the per-IP rate limit.
	RequestsPerMinute int
}

// New creates a Server wired to the given orchestrator.
func New(orch *orchestrator.Orchestrator, cfg Config) *Server {
	cors := DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		cors.AllowedOrigins = cfg.AllowedOrigins
	}

	port := cfg.Port
	if port <= 0 {
		port = 5000
	}

	s := &Server{
		orch:    orch,
		port:    port,
		cors:    cors,
		limiter: NewRateLimiter(cfg.RequestsPerMinute),
		router:  http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes registers all HTTP endpoints.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST /api/chat", s.handleChat)
	s.router.HandleFunc("GET /api/health", s.handleHealth)
	s.router.HandleFunc("GET /api/test", s.handleTest)

	// Everything else is a 404 with the shared envelope.
	s.router.HandleFunc("/", s.handleNotFound)
}

// Handler returns the fully wrapped HTTP handler, for embedding in tests.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(log.Default()),
		CORSMiddleware(s.cors),
		RateLimitMiddleware(s.limiter),
	)(s.router)
}

// Start begins listening on localhost. Blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("SERVER_START | addr=%s version=%s", addr, Version)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, draining in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	log.Printf("SERVER_SHUTDOWN | addr=%s", s.srv.Addr)
	return s.srv.Shutdown(ctx)
}

// ============================================================================
// Request / Response Types
// ============================================================================

// chatRequest is the JSON body accepted by POST /api/chat. The history
// stays raw until its shape is validated separately, so a malformed
// history gets its own validation detail instead of a generic parse error.
type chatRequest struct {
	Message             string          `json:"message"`
	ConversationHistory json.RawMessage `json:"conversationHistory,omitempty"`
	SearchRequired      *bool           `json:"searchRequired,omitempty"`
	MaxTokens           int             `json:"maxTokens,omitempty"`
}

// chatResponse is the JSON body returned by POST /api/chat.
type chatResponse struct {
	Response    string `json:"response"`
	Reasoning   string `json:"reasoning"`
	IsWebSearch bool   `json:"isWebSearch"`
	SearchData  string `json:"searchData,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// healthResponse is the JSON body returned by GET /api/health.
type healthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// errorResponse is the shared error envelope.
type errorResponse struct {
	Error     bool     `json:"error"`
	Message   string   `json:"message"`
	Details   []string `json:"details,omitempty"`
	Timestamp string   `json:"timestamp"`
	Path      string   `json:"path"`
}

// ============================================================================
// Handlers
// ============================================================================

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// MaxBytesReader reports overflow through the decode error
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, http.StatusRequestEntityTooLarge, msgBodyTooLarge, nil)
			return
		}
		writeError(w, r, http.StatusBadRequest, msgBadRequestBody, nil)
		return
	}

	history, err := parseHistory(req.ConversationHistory)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, msgValidation, []string{msgHistoryNotArray})
		return
	}

	result, err := s.orch.Handle(r.Context(), orchestrator.Request{
		Message:        req.Message,
		History:        history,
		SearchRequired: req.SearchRequired,
		MaxTokens:      req.MaxTokens,
	})
	if err != nil {
		var orchErr *orchestrator.Error
		if errors.As(err, &orchErr) {
			writeError(w, r, orchErr.HTTPStatus(), orchErr.Message, orchErr.Details)
			return
		}
		writeError(w, r, http.StatusInternalServerError, msgInternalError, nil)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:    result.FinalAnswer,
		Reasoning:   result.Reasoning,
		IsWebSearch: result.UsedWebSearch,
		SearchData:  result.SearchSummary,
		Timestamp:   result.Timestamp.Format(time.RFC3339),
	})
}

// parseHistory validates that conversationHistory, when present, is an
// array of role/content turns.
func parseHistory(raw json.RawMessage) ([]orchestrator.HistoryMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var history []orchestrator.HistoryMessage
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"deepseek": statusMissingKey,
		"search":   statusMissingKey,
	}
	if s.orch.CompletionConfigured() {
		services["deepseek"] = statusConnected
	}
	if s.orch.SearchConfigured() {
		services["search"] = statusConnected
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "active",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  services,
	})
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   msgServerHealthy,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   Version,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, msgNotFound, nil)
}

// ============================================================================
// Response Helpers
// ============================================================================

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("RESPONSE_ENCODE_FAILED | error=%v", err)
	}
}

// writeError writes the shared error envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string, details []string) {
	writeJSON(w, status, errorResponse{
		Error:     true,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().Format(time.RFC3339),
		Path:      r.URL.Path,
	})
}
