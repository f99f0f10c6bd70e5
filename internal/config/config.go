// Package config loads the service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/artgrid/gallery-proxy/pkg/normalize"
)

// Config holds the application configuration.
type Config struct {
	Port      string // Service port
	RedisURL  string // Redis address for the state store
	APISecret string // Inbound X-API-Key secret
	DevMode   bool   // Bypass inbound authentication

	ProviderKey     string // Asset provider API key
	ProviderSecret  string // Asset provider API secret
	ProviderAccount string // Asset provider account name
	ProviderBaseURL string // Optional API base URL override

	SourceFolder  string         // Upstream folder to serve
	StateKey      string         // Cache record name
	PageSize      int            // Default page size
	NormalizeMode normalize.Mode // strict or lenient
	Shuffle       bool           // Shuffle returned images

	LogLevel  string
	LogPretty bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		RedisURL:        getEnv("REDIS_URL", "localhost:6379"),
		APISecret:       os.Getenv("API_SECRET_KEY"),
		DevMode:         getEnvBool("DEV_MODE"),
		ProviderKey:     os.Getenv("PROVIDER_KEY"),
		ProviderSecret:  os.Getenv("PROVIDER_SECRET"),
		ProviderAccount: os.Getenv("PROVIDER_ACCOUNT"),
		ProviderBaseURL: os.Getenv("PROVIDER_BASE_URL"),
		SourceFolder:    os.Getenv("SOURCE_FOLDER"),
		StateKey:        getEnv("CACHE_STATE_KEY", "state"),
		PageSize:        40,
		NormalizeMode:   normalize.ModeStrict,
		Shuffle:         getEnvBool("SHUFFLE"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogPretty:       getEnvBool("LOG_PRETTY"),
	}

	if sizeStr := os.Getenv("PAGE_SIZE"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PAGE_SIZE: %w", err)
		}
		cfg.PageSize = size
	}

	switch mode := os.Getenv("NORMALIZE_MODE"); mode {
	case "", "strict":
		cfg.NormalizeMode = normalize.ModeStrict
	case "lenient":
		cfg.NormalizeMode = normalize.ModeLenient
	default:
		return nil, fmt.Errorf("invalid NORMALIZE_MODE %q (want strict or lenient)", mode)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.APISecret == "" && !c.DevMode {
		return fmt.Errorf("API_SECRET_KEY is required unless DEV_MODE is set")
	}
	if c.ProviderKey == "" || c.ProviderSecret == "" {
		return fmt.Errorf("PROVIDER_KEY and PROVIDER_SECRET are required")
	}
	if c.ProviderAccount == "" && c.ProviderBaseURL == "" {
		return fmt.Errorf("PROVIDER_ACCOUNT is required")
	}
	if c.SourceFolder == "" {
		return fmt.Errorf("SOURCE_FOLDER is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvBool treats "true" and "1" as true.
func getEnvBool(key string) bool {
	v := os.Getenv(key)
	return v == "true" || v == "1"
}
