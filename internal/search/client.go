// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Configuration constants for the SerpAPI client.
const (
	// DefaultBaseURL is the SerpAPI search endpoint.
	DefaultBaseURL = "https://serpapi.com/search"

	// DefaultTimeout bounds a single search request.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxResults is how many organic results feed the prompt.
	DefaultMaxResults = 3

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 1 * 1024 * 1024 // 1MB limit
)

// NoResults is returned when the search succeeds but matches nothing.
// It stands in for empty context and is never an error.
const NoResults = "لم يتم العثور على نتائج مناسبة"

// Error variables for common search failures.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("SerpAPI key not configured")

	// ErrMissingKeywords indicates Search was called with no query.
	ErrMissingKeywords = errors.New("search keywords required")

	// ErrAuthFailed indicates the API key was rejected.
	ErrAuthFailed = errors.New("search authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("search rate limited")

	// ErrTimeout indicates the request exceeded its deadline.
	ErrTimeout = errors.New("search timed out")
)

// APIError represents a non-2xx response from SerpAPI.
type APIError struct {
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("SerpAPI error (HTTP %d): %s", e.Status, e.Message)
}

// htmlTagRe strips markup SerpAPI sometimes embeds in titles and snippets.
var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// Hit is a single organic search result.
type Hit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// searchResponse is the subset of the SerpAPI payload we consume.
type searchResponse struct {
	OrganicResults []Hit  `json:"organic_results"`
	Error          string `json:"error"`
}

// Config carries the explicit search settings. Zero values fall back to
// the Saudi/Arabic defaults the product ships with.
type Config struct {
	APIKey     string
	BaseURL    string
	Region     string // gl parameter
	Language   string // hl parameter
	MaxResults int
	Timeout    time.Duration
}

// Client is a client for the SerpAPI search endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	region     string
	language   string
	maxResults int
	httpClient *http.Client
}

// NewClient creates a search client from the given config. An empty API
// key still yields a usable client; Search then fails with
// ErrNotConfigured and IsConfigured reports false.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Region == "" {
		cfg.Region = "sa"
	}
	if cfg.Language == "" {
		cfg.Language = "ar"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		region:     cfg.Region,
		language:   cfg.Language,
		maxResults: cfg.MaxResults,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// IsConfigured returns true if the client has an API key configured.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Search runs a web search for the given keywords and returns formatted
// Arabic result blocks. Zero hits return NoResults, not an error.
func (c *Client) Search(ctx context.Context, keywords string) (string, error) {
	if strings.TrimSpace(keywords) == "" {
		return "", ErrMissingKeywords
	}
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	params := url.Values{}
	params.Set("q", keywords)
	params.Set("api_key", c.apiKey)
	params.Set("engine", "google")
	params.Set("gl", c.region)
	params.Set("hl", c.language)
	params.Set("num", fmt.Sprintf("%d", c.maxResults))
	params.Set("safe", "active")
	params.Set("time", "year")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.handleErrorResponse(resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return FormatHits(searchResp.OrganicResults, c.maxResults), nil
}

// FormatHits renders up to max hits as numbered Arabic blocks:
//
//	[1] {title}
//	{snippet}
//	المصدر: {link}
//
// joined by blank lines. Empty input yields NoResults.
func FormatHits(hits []Hit, max int) string {
	if len(hits) == 0 {
		return NoResults
	}
	if len(hits) > max {
		hits = hits[:max]
	}

	blocks := make([]string, 0, len(hits))
	for i, hit := range hits {
		title := htmlTagRe.ReplaceAllString(hit.Title, "")
		snippet := htmlTagRe.ReplaceAllString(hit.Snippet, "")
		blocks = append(blocks, fmt.Sprintf("[%d] %s\n%s\nالمصدر: %s\n", i+1, title, snippet, hit.Link))
	}

	formatted := strings.Join(blocks, "\n")
	if formatted == "" {
		return NoResults
	}
	return formatted
}

// readResponse reads the response body with a size limit.
//
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts HTTP error responses to typed errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var searchResp searchResponse
	message := ""
	if err := json.Unmarshal(body, &searchResp); err == nil {
		message = searchResp.Error
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuthFailed, message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, message)
	default:
		return &APIError{Message: message, Status: statusCode}
	}
}

// isTimeout reports whether the transport error was a deadline problem.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
