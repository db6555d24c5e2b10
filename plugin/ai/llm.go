// Package ai provides the completion-service client used by the
// diagnostic dialogue engine.
package ai

import (
	"context"
	"time"

	"github.com/hrygo/autosense/internal/profile"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// CompletionService is the language-completion capability consumed by the
// dialogue engine. When a schema is supplied the returned text must parse
// as JSON conforming to it, or the call fails.
type CompletionService interface {
	// Complete performs a synchronous completion.
	Complete(ctx context.Context, messages []Message, temperature float32, schema *Schema) (string, error)

	// IsConfigured reports whether the service is usable.
	IsConfigured() bool
}

// Config holds the completion-service configuration.
type Config struct {
	Provider   string
	BaseURL    string
	APIKey     string
	ChatModel  string
	MaxTokens  int
	MaxRetries int
	Timeout    time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:   "openai",
		BaseURL:    "https://api.openai.com/v1",
		ChatModel:  "gpt-4o-mini",
		MaxTokens:  2048,
		MaxRetries: 3,
		Timeout:    30 * time.Second,
	}
}

// NewConfigFromProfile creates a completion-service config from the profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := DefaultConfig()
	cfg.Provider = p.AIProvider
	cfg.APIKey = p.AIAPIKey
	if p.AIBaseURL != "" {
		cfg.BaseURL = p.AIBaseURL
	}
	if p.AIChatModel != "" {
		cfg.ChatModel = p.AIChatModel
	}
	if p.AIMaxTokens > 0 {
		cfg.MaxTokens = p.AIMaxTokens
	}
	return cfg
}
