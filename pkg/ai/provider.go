package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/pkg/config"
)

// Provider names accepted by LLM_PROVIDER
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// NewGenerator builds the structured generator selected by cfg. The returned
// close func releases provider connections and is never nil.
func NewGenerator(ctx context.Context, cfg *config.LLMConfig, logger *zap.Logger) (StructuredGenerator, func(), error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		c := NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.Timeout,
		}, logger)
		return c, func() {}, nil
	case ProviderGemini:
		c, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:    cfg.GeminiAPIKey,
			ModelName: cfg.GeminiModel,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}
