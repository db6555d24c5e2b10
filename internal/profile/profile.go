package profile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where autosense stores its own data
	DSN string
	// Driver is the database driver (sqlite only for now)
	Driver string
	// Version is the current version of server
	Version string

	// SessionTTLSeconds is the idle duration after which a session expires.
	SessionTTLSeconds int
	// MaxDiagnosticTurns is the question budget of the diagnostic loop.
	MaxDiagnosticTurns int

	// AI configuration
	AIEnabled   bool   // AUTOSENSE_AI_ENABLED
	AIProvider  string // AUTOSENSE_AI_PROVIDER (default: openai)
	AIAPIKey    string // AUTOSENSE_AI_API_KEY
	AIBaseURL   string // AUTOSENSE_AI_BASE_URL (default: https://api.openai.com/v1)
	AIChatModel string // AUTOSENSE_AI_CHAT_MODEL (default: gpt-4o-mini)
	AIMaxTokens int    // AUTOSENSE_AI_MAX_TOKENS (default: 2048)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// FromEnv loads configuration from AUTOSENSE_* environment variables.
func (p *Profile) FromEnv() {
	p.Mode = getEnvOrDefault("AUTOSENSE_MODE", p.Mode)
	p.Addr = getEnvOrDefault("AUTOSENSE_ADDR", p.Addr)
	p.Port = getEnvInt("AUTOSENSE_PORT", p.Port)
	p.Data = getEnvOrDefault("AUTOSENSE_DATA", p.Data)
	p.DSN = getEnvOrDefault("AUTOSENSE_DSN", p.DSN)
	p.Driver = getEnvOrDefault("AUTOSENSE_DRIVER", p.Driver)

	p.SessionTTLSeconds = getEnvInt("AUTOSENSE_SESSION_TTL_SECONDS", p.SessionTTLSeconds)
	p.MaxDiagnosticTurns = getEnvInt("AUTOSENSE_MAX_DIAGNOSTIC_TURNS", p.MaxDiagnosticTurns)

	p.AIEnabled = getEnvBool("AUTOSENSE_AI_ENABLED", p.AIEnabled)
	p.AIProvider = getEnvOrDefault("AUTOSENSE_AI_PROVIDER", p.AIProvider)
	p.AIAPIKey = getEnvOrDefault("AUTOSENSE_AI_API_KEY", p.AIAPIKey)
	p.AIBaseURL = getEnvOrDefault("AUTOSENSE_AI_BASE_URL", p.AIBaseURL)
	p.AIChatModel = getEnvOrDefault("AUTOSENSE_AI_CHAT_MODEL", p.AIChatModel)
	p.AIMaxTokens = getEnvInt("AUTOSENSE_AI_MAX_TOKENS", p.AIMaxTokens)
}

// Validate checks the profile and fills in defaults.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Port == 0 {
		p.Port = 8230
	}
	if p.Data == "" {
		p.Data = "./data"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" {
		return errors.Errorf("unsupported database driver: %s", p.Driver)
	}
	if p.DSN == "" {
		p.DSN = fmt.Sprintf("%s/autosense_%s.db", strings.TrimRight(p.Data, "/"), p.Mode)
	}
	if p.SessionTTLSeconds <= 0 {
		p.SessionTTLSeconds = 3600
	}
	if p.MaxDiagnosticTurns <= 0 {
		p.MaxDiagnosticTurns = 8
	}
	if p.AIProvider == "" {
		p.AIProvider = "openai"
	}
	if p.AIChatModel == "" {
		p.AIChatModel = "gpt-4o-mini"
	}
	if p.AIMaxTokens <= 0 {
		p.AIMaxTokens = 2048
	}
	return nil
}
