package ai

import (
	"errors"

	"github.com/chatassist/chatassist/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	Embedding EmbeddingConfig
	LLM       LLMConfig
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Model      string // text-embedding-ada-002
	Dimensions int    // 1536
	APIKey     string
	BaseURL    string
}

// LLMConfig represents chat completion configuration.
type LLMConfig struct {
	Model       string // gpt-3.5-turbo
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 2048
	Temperature float32 // default: 0.7
}

// NewConfigFromProfile creates AI config from profile. The API key here is
// the server-side fallback; per-user keys override it at request time.
func NewConfigFromProfile(p *profile.Profile) *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Model:      p.EmbeddingModel,
			Dimensions: p.EmbeddingDimensions,
			APIKey:     p.OpenAIAPIKey,
			BaseURL:    p.OpenAIBaseURL,
		},
		LLM: LLMConfig{
			Model:       p.DefaultModel,
			APIKey:      p.OpenAIAPIKey,
			BaseURL:     p.OpenAIBaseURL,
			MaxTokens:   2048,
			Temperature: 0.7,
		},
	}
}

// Validate validates the embedding configuration.
func (c *EmbeddingConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("embedding API key is required")
	}
	if c.Model == "" {
		return errors.New("embedding model is required")
	}
	return nil
}

// Validate validates the LLM configuration.
func (c *LLMConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	if c.Model == "" {
		return errors.New("LLM model is required")
	}
	return nil
}
