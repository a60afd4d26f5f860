// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/morganforge/tafakkur/internal/deepseek"
	"github.com/morganforge/tafakkur/internal/orchestrator"
)

// =============================================================================
// TEST FAKES
// =============================================================================

type fakeCompletion struct {
	reply      string
	err        error
	configured bool
	lastPrompt string
}

func (f *fakeCompletion) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompletion) IsConfigured() bool { return f.configured }

type fakeSearch struct {
	result     string
	err        error
	configured bool
}

func (f *fakeSearch) Search(ctx context.Context, keywords string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

func (f *fakeSearch) IsConfigured() bool { return f.configured }

func newTestServer(completion *fakeCompletion, search *fakeSearch) *Server {
	orch := orchestrator.New(completion, search, nil)
	return New(orch, Config{Port: 5000, RequestsPerMinute: 1000})
}

func postChat(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var env errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return env
}

// =============================================================================
// CHAT ENDPOINT TESTS
// =============================================================================

func TestHandleChat_Success(t *testing.T) {
	completion := &fakeCompletion{
		reply: "[التفكير العميق]:\nخطوات التفكير هنا\n\n" +
			"[الإجابة النهائية]:\nهذه هي الإجابة",
		configured: true,
	}
	s := newTestServer(completion, &fakeSearch{})

	rec := postChat(t, s, `{"message":"ما هي عاصمة فرنسا؟"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Response != "هذه هي الإجابة" {
		t.Errorf("Response = %q", resp.Response)
	}
	if resp.Reasoning != "خطوات التفكير هنا" {
		t.Errorf("Reasoning = %q", resp.Reasoning)
	}
	if resp.IsWebSearch {
		t.Error("IsWebSearch should be false without a search provider")
	}
	if resp.Timestamp == "" {
		t.Error("Timestamp should be set")
	}
}

func TestHandleChat_ForwardsHistory(t *testing.T) {
	completion := &fakeCompletion{reply: "رد", configured: true}
	s := newTestServer(completion, &fakeSearch{})

	body := `{"message":"تابع","conversationHistory":[{"role":"user","content":"السؤال الأول"}]}`
	rec := postChat(t, s, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(completion.lastPrompt, "السؤال الأول") {
		t.Errorf("prompt missing history content: %q", completion.lastPrompt)
	}
}

func TestHandleChat_ValidationError(t *testing.T) {
	s := newTestServer(&fakeCompletion{configured: true}, &fakeSearch{})

	rec := postChat(t, s, `{"message":"   "}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.Error {
		t.Error("envelope error flag should be true")
	}
	if env.Message != "بيانات غير صالحة" {
		t.Errorf("Message = %q", env.Message)
	}
	if len(env.Details) == 0 {
		t.Error("validation details should be present")
	}
	if env.Path != "/api/chat" {
		t.Errorf("Path = %q", env.Path)
	}
}

func TestHandleChat_MalformedJSON(t *testing.T) {
	s := newTestServer(&fakeCompletion{configured: true}, &fakeSearch{})

	rec := postChat(t, s, `{"message":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Message != msgBadRequestBody {
		t.Errorf("Message = %q", env.Message)
	}
}

func TestHandleChat_HistoryNotArray(t *testing.T) {
	s := newTestServer(&fakeCompletion{configured: true}, &fakeSearch{})

	for _, body := range []string{
		`{"message":"سؤال","conversationHistory":"نص"}`,
		`{"message":"سؤال","conversationHistory":{"role":"user"}}`,
		`{"message":"سؤال","conversationHistory":42}`,
	} {
		rec := postChat(t, s, body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400 for body %s", rec.Code, body)
		}
		env := decodeEnvelope(t, rec)
		if env.Message != msgValidation {
			t.Errorf("Message = %q", env.Message)
		}
		if len(env.Details) != 1 || env.Details[0] != msgHistoryNotArray {
			t.Errorf("Details = %v", env.Details)
		}
	}
}

func TestHandleChat_NullHistoryAccepted(t *testing.T) {
	s := newTestServer(&fakeCompletion{reply: "رد", configured: true}, &fakeSearch{})

	rec := postChat(t, s, `{"message":"سؤال","conversationHistory":null}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleChat_BodyTooLarge(t *testing.T) {
	s := newTestServer(&fakeCompletion{configured: true}, &fakeSearch{})

	body := `{"message":"` + strings.Repeat("ا", MaxRequestBodySize) + `"}`
	rec := postChat(t, s, body)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Message != msgBodyTooLarge {
		t.Errorf("Message = %q", env.Message)
	}
}

func TestHandleChat_ProviderErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"missing key", deepseek.ErrNotConfigured, http.StatusServiceUnavailable},
		{"auth failed", deepseek.ErrAuthFailed, http.StatusUnauthorized},
		{"rate limited", deepseek.ErrRateLimited, http.StatusTooManyRequests},
		{"timeout", deepseek.ErrTimeout, http.StatusGatewayTimeout},
		{"empty response", deepseek.ErrEmptyResponse, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeCompletion{err: tt.err, configured: true}, &fakeSearch{})

			rec := postChat(t, s, `{"message":"سؤال"}`)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			env := decodeEnvelope(t, rec)
			if !env.Error || env.Message == "" {
				t.Errorf("envelope = %+v", env)
			}
		})
	}
}

func TestHandleChat_WrongMethod(t *testing.T) {
	s := newTestServer(&fakeCompletion{configured: true}, &fakeSearch{})

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

// =============================================================================
// HEALTH AND TEST ENDPOINT TESTS
// =============================================================================

func TestHandleHealth(t *testing.T) {
	s := newTestServer(
		&fakeCompletion{configured: true},
		&fakeSearch{configured: false},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if resp.Status != "active" {
		t.Errorf("Status = %q", resp.Status)
	}
	if resp.Version != Version {
		t.Errorf("Version = %q", resp.Version)
	}
	if resp.Services["deepseek"] != statusConnected {
		t.Errorf("deepseek = %q", resp.Services["deepseek"])
	}
	if resp.Services["search"] != statusMissingKey {
		t.Errorf("search = %q", resp.Services["search"])
	}
}

func TestHandleTest(t *testing.T) {
	s := newTestServer(&fakeCompletion{configured: true}, &fakeSearch{})

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["message"] != msgServerHealthy {
		t.Errorf("message = %q", resp["message"])
	}
}

func TestHandleNotFound(t *testing.T) {
	s := newTestServer(&fakeCompletion{configured: true}, &fakeSearch{})

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Message != msgNotFound {
		t.Errorf("Message = %q", env.Message)
	}
	if env.Path != "/api/unknown" {
		t.Errorf("Path = %q", env.Path)
	}
}

// =============================================================================
// MIDDLEWARE TESTS
// =============================================================================

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(&fakeCompletion{configured: true}, &fakeSearch{})

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	s := newTestServer(&fakeCompletion{configured: true}, &fakeSearch{})

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	s := newTestServer(&fakeCompletion{configured: true}, &fakeSearch{})

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	s := newTestServer(&fakeCompletion{configured: true}, &fakeSearch{})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2)

	if !rl.Allow("10.0.0.1") {
		t.Error("first request should be allowed")
	}
	if !rl.Allow("10.0.0.1") {
		t.Error("second request should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request should be rejected")
	}
	// A different client has its own bucket
	if !rl.Allow("10.0.0.2") {
		t.Error("other client should be allowed")
	}
}

func TestRateLimitMiddleware_Exceeded(t *testing.T) {
	orch := orchestrator.New(&fakeCompletion{configured: true}, &fakeSearch{}, nil)
	s := New(orch, Config{Port: 5000, RequestsPerMinute: 1})

	handler := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Message != msgTooManyRequests {
		t.Errorf("Message = %q", env.Message)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := RecoveryMiddleware()(panicking)

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"direct connection", "192.0.2.5:1234", "", "192.0.2.5"},
		{"untrusted proxy ignores header", "192.0.2.5:1234", "203.0.113.9", "192.0.2.5"},
		{"trusted proxy honors header", "127.0.0.1:1234", "203.0.113.9", "203.0.113.9"},
		{"invalid forwarded value", "127.0.0.1:1234", "not-an-ip", "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
