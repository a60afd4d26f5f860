// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/morganforge/tafakkur/internal/orchestrator"
)

// ===== CONSTANTS =====

const (
	// DefaultBaseURL is the local server API root.
	DefaultBaseURL = "http://localhost:5000/api"

	// DefaultTimeout covers a full reasoning turn, which can be slow.
	DefaultTimeout = 60 * time.Second

	// HealthTimeout is for the lightweight health endpoint.
	HealthTimeout = 5 * time.Second

	// TestTimeout is for the connectivity probe.
	TestTimeout = 3 * time.Second

	// MaxResponseSize caps response bodies at 10MB.
	MaxResponseSize = 10 * 1024 * 1024
)

// MsgNoResponse is shown when the server cannot be reached at all.
const MsgNoResponse = "لا يوجد استجابة من الخادم - تحقق من الاتصال"

// ===== ERRORS =====

// ErrUnreachable indicates a transport-level failure before any HTTP
// response arrived.
var ErrUnreachable = errors.New("apiclient: server unreachable")

// ServerError is an error envelope returned by the server.
type ServerError struct {
	Status  int
	Message string
	Details []string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("apiclient: server error (HTTP %d): %s", e.Status, e.Message)
}

// ===== TYPES =====

// SendRequest is the body for a chat turn.
type SendRequest struct {
	Message             string                        `json:"message"`
	ConversationHistory []orchestrator.HistoryMessage `json:"conversationHistory,omitempty"`
	SearchRequired      *bool                         `json:"searchRequired,omitempty"`
	MaxTokens           int                           `json:"maxTokens,omitempty"`
}

// SendResponse is a completed chat turn as returned by the server.
type SendResponse struct {
	Response    string `json:"response"`
	Reasoning   string `json:"reasoning"`
	IsWebSearch bool   `json:"isWebSearch"`
	SearchData  string `json:"searchData"`
	Timestamp   string `json:"timestamp"`
}

// HealthResponse reports server and provider status.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// errorEnvelope mirrors the server's error body.
type errorEnvelope struct {
	Error   bool     `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

// ===== CLIENT =====

// Client talks to a tafakkur server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given API root. An empty baseURL
// uses the local default.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client (for testing).
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.httpClient = client
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendMessage runs one chat turn on the server.
func (c *Client) SendMessage(ctx context.Context, req SendRequest) (*SendResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("apiclient: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, MsgNoResponse)
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newServerError(resp.StatusCode, data)
	}

	var out SendResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("apiclient: parse response: %w", err)
	}
	return &out, nil
}

// Health queries the health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("apiclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, MsgNoResponse)
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newServerError(resp.StatusCode, data)
	}

	var out HealthResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("apiclient: parse response: %w", err)
	}
	return &out, nil
}

// TestConnection probes the server and reports reachability.
func (c *Client) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, TestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/test", nil)
	if err != nil {
		return fmt.Errorf("apiclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnreachable, MsgNoResponse)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := readResponse(resp)
		return newServerError(resp.StatusCode, data)
	}
	return nil
}

// UserMessage extracts an Arabic message suitable for display from any
// error returned by this package.
func UserMessage(err error) string {
	var srvErr *ServerError
	if errors.As(err, &srvErr) && srvErr.Message != "" {
		return srvErr.Message
	}
	if errors.Is(err, ErrUnreachable) {
		return MsgNoResponse
	}
	return err.Error()
}

// readResponse reads the body with a size cap.
func readResponse(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("apiclient: read response: %w", err)
	}
	return data, nil
}

// newServerError builds a ServerError from an envelope body, falling back
// to a generic message when the body is not an envelope.
func newServerError(status int, data []byte) *ServerError {
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Message != "" {
		return &ServerError{Status: status, Message: env.Message, Details: env.Details}
	}
	return &ServerError{Status: status, Message: MsgNoResponse}
}
