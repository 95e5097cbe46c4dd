// Package config loads process configuration from the environment.
// There is no package-level singleton: the hosting process builds one
// Config at startup and passes it down explicitly.
package config

import (
	"os"

	"github.com/hal9000y/research-mail/internal/fault"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultProvider        = "openai"
	DefaultModel           = "gpt-4o-mini"
	DefaultCredentialsPath = "./credentials.json"
	DefaultTokenPath       = "./token.json"
	DefaultAppEnv          = "development"
	DefaultLogLevel        = "info"
)

// Config carries every setting the process needs. All fields are plain
// values; secrets stay out of String-like representations by never
// implementing one.
type Config struct {
	// LLM provider settings.
	LLMProvider string
	LLMAPIKey   string
	LLMModel    string
	LLMBaseURL  string

	// Brave web search.
	BraveAPIKey    string
	BraveSearchURL string

	// Gmail OAuth material.
	GmailCredentialsPath string
	GmailTokenPath       string

	AppEnv   string
	LogLevel string
}

// FromEnv builds a Config from environment variables, applying defaults
// and validating required settings. Call godotenv.Load beforehand if an
// env file should contribute.
func FromEnv() (*Config, error) {
	cfg := &Config{
		LLMProvider:          getenv("LLM_PROVIDER", DefaultProvider),
		LLMAPIKey:            os.Getenv("LLM_API_KEY"),
		LLMModel:             getenv("LLM_MODEL", DefaultModel),
		LLMBaseURL:           os.Getenv("LLM_BASE_URL"),
		BraveAPIKey:          os.Getenv("BRAVE_API_KEY"),
		BraveSearchURL:       os.Getenv("BRAVE_SEARCH_URL"),
		GmailCredentialsPath: getenv("GMAIL_CREDENTIALS_PATH", DefaultCredentialsPath),
		GmailTokenPath:       getenv("GMAIL_TOKEN_PATH", DefaultTokenPath),
		AppEnv:               getenv("APP_ENV", DefaultAppEnv),
		LogLevel:             getenv("LOG_LEVEL", DefaultLogLevel),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.LLMAPIKey == "" {
		return fault.Configf("env variable LLM_API_KEY must be set")
	}
	if c.BraveAPIKey == "" {
		return fault.Configf("env variable BRAVE_API_KEY must be set")
	}

	switch c.LLMProvider {
	case "openai", "anthropic":
	default:
		return fault.Configf("unsupported LLM_PROVIDER %q, want openai or anthropic", c.LLMProvider)
	}

	return nil
}

// Production reports whether the process runs with production settings.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
