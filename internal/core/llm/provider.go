package llm

import (
	"context"
	"fmt"
)

// Provider is the interface over generative model backends. Implementations
// must map backend failures onto the sentinel errors in errors.go.
type Provider interface {
	GenerateContent(ctx context.Context, model, prompt string) (string, error)
	GetProviderName() string
}

// ProviderType selects a backend in the factory
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOpenAI ProviderType = "openai"
)

// ProviderConfig holds keys and generation settings for the factory
type ProviderConfig struct {
	Type ProviderType

	GeminiKey string
	OpenAIKey string

	Temperature float32
	MaxTokens   int
}

// NewProvider creates the configured LLM provider
func NewProvider(cfg *ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case ProviderGemini:
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required")
		}
		return NewGeminiProvider(cfg.GeminiKey, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.Temperature, cfg.MaxTokens), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s", cfg.Type)
	}
}
