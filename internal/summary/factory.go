package summary

import (
	"context"
	"fmt"
	"os"
)

// Provider identifies a language-model backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// ProviderConfig holds the resolved provider and its credentials.
type ProviderConfig struct {
	Provider Provider
	APIKey   string
	BaseURL  string
	Model    string
}

// DetectProvider resolves a provider from the environment.
// Priority: ANTHROPIC_API_KEY > OPENAI_API_KEY > GEMINI_API_KEY.
func DetectProvider() (ProviderConfig, bool) {
	providers := []struct {
		envVar   string
		provider Provider
	}{
		{"ANTHROPIC_API_KEY", ProviderAnthropic},
		{"OPENAI_API_KEY", ProviderOpenAI},
		{"GEMINI_API_KEY", ProviderGemini},
	}
	for _, p := range providers {
		if key := os.Getenv(p.envVar); key != "" {
			return ProviderConfig{Provider: p.provider, APIKey: key}, true
		}
	}
	return ProviderConfig{}, false
}

// NewClient builds an LLMClient for the configured provider. An empty
// provider falls back to environment detection.
func NewClient(ctx context.Context, config ProviderConfig) (LLMClient, error) {
	if config.Provider == "" {
		detected, ok := DetectProvider()
		if !ok {
			return nil, fmt.Errorf("no summarization provider configured; set ANTHROPIC_API_KEY, OPENAI_API_KEY, or GEMINI_API_KEY")
		}
		detected.Model = config.Model
		detected.BaseURL = config.BaseURL
		config = detected
	}

	switch config.Provider {
	case ProviderAnthropic:
		return NewAnthropicClientWithConfig(AnthropicConfig{
			APIKey:  config.APIKey,
			BaseURL: config.BaseURL,
			Model:   config.Model,
		}), nil
	case ProviderOpenAI:
		return NewOpenAIClientWithConfig(OpenAIConfig{
			APIKey:  config.APIKey,
			BaseURL: config.BaseURL,
			Model:   config.Model,
		}), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, config.APIKey, config.Model)
	default:
		return nil, fmt.Errorf("unknown summarization provider: %q", config.Provider)
	}
}
