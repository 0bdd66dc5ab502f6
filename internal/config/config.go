// Package config provides configuration management for Compa.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAddr        = ":5000"
	defaultModel       = "google/gemma-2-9b-it:free"
	defaultProviderURL = "https://openrouter.ai/api/v1"
	defaultEnvFile     = ".env"
)

// Config holds all configuration for the Compa server.
type Config struct {
	// ServerAddr is the address the HTTP server listens on (e.g., ":5000").
	ServerAddr string

	// OpenRouterAPIKey is the bearer token sent to the provider. Required.
	OpenRouterAPIKey string

	// Model is the provider model id.
	Model string

	// ProviderURL is the base URL of the OpenAI-compatible provider API.
	ProviderURL string

	// ProviderTimeout bounds each outbound call. 0 means no client-side
	// timeout; the call then ends only on completion, error, or when the
	// inbound request goes away.
	ProviderTimeout time.Duration

	// Telegram integration (optional -- long polling).
	TelegramBotToken string

	// Slack integration (optional -- Socket Mode).
	// SlackBotToken is the Bot User OAuth Token (xoxb-...).
	SlackBotToken string
	// SlackAppToken is the App-Level Token (xapp-...) required for Socket Mode.
	SlackAppToken string
}

// Load creates a Config from the dotenv file and environment variables.
// Values are resolved in order: environment variable > dotenv file > default.
// The dotenv file is COMPA_ENV_FILE, or ".env" in the working directory;
// a missing file is not an error.
func Load() (*Config, error) {
	envFile := envOr("COMPA_ENV_FILE", defaultEnvFile)
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	timeout, err := envDuration("COMPA_PROVIDER_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerAddr:       envOr("COMPA_ADDR", defaultAddr),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		Model:            envOr("COMPA_MODEL", defaultModel),
		ProviderURL:      envOr("COMPA_PROVIDER_URL", defaultProviderURL),
		ProviderTimeout:  timeout,
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		SlackBotToken:    os.Getenv("SLACK_BOT_TOKEN"),
		SlackAppToken:    os.Getenv("SLACK_APP_TOKEN"),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.OpenRouterAPIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if c.ProviderTimeout < 0 {
		return fmt.Errorf("COMPA_PROVIDER_TIMEOUT must not be negative, got %s", c.ProviderTimeout)
	}
	return nil
}

// SlackEnabled returns true if Slack Socket Mode is configured.
func (c *Config) SlackEnabled() bool {
	return c.SlackBotToken != "" && c.SlackAppToken != ""
}

// TelegramEnabled returns true if the Telegram bot is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
