package ai

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

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/pkg/retryable"
)

// OpenAIConfig configures the Responses API client
type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries uint64
	// RetryInitialInterval is the first backoff delay; later delays double
	RetryInitialInterval time.Duration
}

// OpenAIClient generates structured output through the OpenAI Responses API
type OpenAIClient struct {
	apiKey       string
	model        string
	baseURL      string
	client       *http.Client
	maxRetries   uint64
	initialDelay time.Duration
	logger       *zap.Logger
}

// NewOpenAIClient creates an OpenAI client from cfg
func NewOpenAIClient(cfg OpenAIConfig, logger *zap.Logger) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryInitialInterval == 0 {
		cfg.RetryInitialInterval = time.Second
	}
	return &OpenAIClient{
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		client:       &http.Client{Timeout: cfg.Timeout},
		maxRetries:   cfg.MaxRetries,
		initialDelay: cfg.RetryInitialInterval,
		logger:       logger,
	}
}

type responsesInput struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model string           `json:"model"`
	Input []responsesInput `json:"input"`
	Text  struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text,omitempty"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
}

// HTTPError is a non-2xx answer from the API
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

// HTTPStatusCode implements retryable.StatusCoder
func (e *HTTPError) HTTPStatusCode() int {
	return e.StatusCode
}

// GenerateJSON asks the model for an object conforming to schema using strict json_schema output
func (c *OpenAIClient) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	if schemaName == "" {
		return nil, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, errors.New("schema required")
	}

	req := responsesRequest{
		Model: c.model,
		Input: []responsesInput{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	req.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   schemaName,
		"schema": schema,
		"strict": true,
	}

	var resp responsesResponse
	if err := c.doWithRetry(ctx, "/v1/responses", &req, &resp); err != nil {
		return nil, err
	}

	text, refusal := extractOutputText(resp)
	if refusal != "" {
		return nil, retryable.Permanent(fmt.Errorf("model refused: %s", refusal))
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("no output_text found in response")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, retryable.Permanent(fmt.Errorf("failed to parse model JSON: %w", err))
	}
	return obj, nil
}

func (c *OpenAIClient) doWithRetry(ctx context.Context, path string, body, out any) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialDelay
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		err := c.doOnce(ctx, path, body, out)
		if err != nil && !retryable.IsRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		if c.logger != nil {
			c.logger.Warn("OpenAI request retrying",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("sleep", wait),
				zap.Error(err))
		}
	}

	return backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx), notify)
}

func (c *OpenAIClient) doOnce(ctx context.Context, path string, body, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("openai decode error: %w", err)
	}
	return nil
}

func extractOutputText(resp responsesResponse) (string, string) {
	var out strings.Builder
	var refusal string
	for _, item := range resp.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, c := range item.Content {
			switch c.Type {
			case "output_text":
				out.WriteString(c.Text)
			case "refusal":
				refusal = c.Refusal
			}
		}
	}
	return out.String(), refusal
}
