package config

import "codectx/internal/summary"

// SummaryConfig configures the summarization model client. An empty provider
// defers to environment detection (ANTHROPIC_API_KEY, OPENAI_API_KEY,
// GEMINI_API_KEY, in that order).
type SummaryConfig struct {
	Provider string `yaml:"provider"` // openai, anthropic, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
}

// ProviderConfig converts the section into the summary package's settings.
func (s SummaryConfig) ProviderConfig() summary.ProviderConfig {
	return summary.ProviderConfig{
		Provider: summary.Provider(s.Provider),
		APIKey:   s.APIKey,
		BaseURL:  s.BaseURL,
		Model:    s.Model,
	}
}
