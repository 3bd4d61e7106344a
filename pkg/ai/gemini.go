package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/johnquangdev/practice-scoring/pkg/retryable"
)

// GeminiConfig configures the Gemini client
type GeminiConfig struct {
	APIKey     string
	ModelName  string
	MaxRetries uint64
	RetryDelay time.Duration
}

// GeminiClient generates structured output through the Gemini API
type GeminiClient struct {
	client     *genai.Client
	modelName  string
	maxRetries uint64
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-1.5-pro"
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if logger != nil {
		logger.Info("Gemini client initialized",
			zap.String("model", cfg.ModelName),
			zap.Uint64("max_retries", cfg.MaxRetries))
	}

	return &GeminiClient{
		client:     client,
		modelName:  cfg.ModelName,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// GenerateJSON asks Gemini for a JSON object constrained by schema
func (c *GeminiClient) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	if schema == nil {
		return nil, errors.New("schema required")
	}
	responseSchema, err := GeminiSchema(schema)
	if err != nil {
		return nil, err
	}

	// GenerativeModel carries per-request settings, so each call gets its own
	model := c.client.GenerativeModel(c.modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = responseSchema
	model.SetTemperature(0.2)

	var obj map[string]any
	attempt := 0
	operation := func() error {
		attempt++
		resp, err := model.GenerateContent(ctx, genai.Text(user))
		if err != nil {
			if !retryable.IsRetryableError(err) {
				return backoff.Permanent(fmt.Errorf("gemini API error: %w", err))
			}
			return fmt.Errorf("gemini API error: %w", err)
		}

		text := responseText(resp)
		if text == "" {
			return errors.New("empty response from gemini")
		}
		if err := json.Unmarshal([]byte(stripCodeFence(text)), &obj); err != nil {
			return backoff.Permanent(retryable.Permanent(fmt.Errorf("failed to parse gemini response for %s: %w", schemaName, err)))
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		if c.logger != nil {
			c.logger.Warn("Retrying Gemini request",
				zap.Int("attempt", attempt),
				zap.Duration("sleep", wait),
				zap.Error(err))
		}
	}

	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), c.maxRetries)
	if err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, err
	}
	return obj, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var out strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out.WriteString(string(text))
			}
		}
		if out.Len() > 0 {
			break
		}
	}
	return out.String()
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// GeminiSchema converts the JSON Schema subset used by this package into a
// genai.Schema. Numeric bounds are not representable and are enforced by
// DecodeScorecard instead.
func GeminiSchema(schema map[string]any) (*genai.Schema, error) {
	typeName, _ := schema["type"].(string)
	out := &genai.Schema{}
	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}

	switch typeName {
	case "object":
		out.Type = genai.TypeObject
		props, _ := schema["properties"].(map[string]any)
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("property %q is not a schema object", name)
			}
			converted, err := GeminiSchema(child)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			out.Properties[name] = converted
		}
		out.Required = stringList(schema["required"])
	case "array":
		out.Type = genai.TypeArray
		items, ok := schema["items"].(map[string]any)
		if !ok {
			return nil, errors.New("array schema without items")
		}
		converted, err := GeminiSchema(items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		out.Items = converted
	case "string":
		out.Type = genai.TypeString
		out.Enum = stringList(schema["enum"])
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("unsupported schema type %q", typeName)
	}
	return out, nil
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
