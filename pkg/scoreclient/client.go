// Package scoreclient talks to the scoring API and drives a session from
// "call ended" to a terminal scoring outcome.
package scoreclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Scoring statuses reported by the status endpoint
const (
	StatusScoring = "scoring"
	StatusScored  = "scored"
	StatusFailed  = "failed"
)

// StartResponse is the body of an accepted score request
type StartResponse struct {
	Message   string `json:"message"`
	RunID     string `json:"run_id"`
	SessionID string `json:"session_id"`
}

// StatusResponse is the polling projection of a session
type StatusResponse struct {
	SessionID     string  `json:"session_id"`
	ScoringStatus *string `json:"scoring_status"`
	ScorecardID   *string `json:"scorecard_id"`
	HasTranscript bool    `json:"has_transcript"`
}

// Status returns the scoring status or "" when scoring was never requested
func (r *StatusResponse) Status() string {
	if r == nil || r.ScoringStatus == nil {
		return ""
	}
	return *r.ScoringStatus
}

// APIError is a non-2xx response
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("scoring api: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("scoring api: %d", e.StatusCode)
}

// HTTPStatusCode exposes the status for retry classification
func (e *APIError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client calls the scoring endpoints with a bearer token
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the API rooted at baseURL, e.g. "http://localhost:8080/v1"
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartScoring asks the API to score sessionID
func (c *Client) StartScoring(ctx context.Context, sessionID string) (*StartResponse, error) {
	body, err := json.Marshal(map[string]string{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	var out StartResponse
	if err := c.do(ctx, http.MethodPost, "/score", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status reads the scoring projection of sessionID
func (c *Client) Status(ctx context.Context, sessionID string) (*StatusResponse, error) {
	var out StatusResponse
	path := "/score/status?session_id=" + url.QueryEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(raw, &e) == nil {
			apiErr.Message = e.Error
			apiErr.Code = e.Code
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
