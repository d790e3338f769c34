// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server
	Port int
	Env  string

	// Database. Empty means run with in-memory stores.
	DatabaseURL string

	// NATS. Empty means in-process notifications only.
	NATSURL string

	// Cache
	Cache CacheConfig

	// AI providers
	AI AIConfig
}

// CacheConfig holds cache tuning.
type CacheConfig struct {
	SweepInterval time.Duration
	SettingsTTL   time.Duration
	PromptsTTL    time.Duration
}

// AIConfig holds last-resort provider keys used when the settings
// store is unreachable or holds no key for a provider.
type AIConfig struct {
	OpenAIKey string
	GeminiKey string
	GroqKey   string
}

// Lookup returns the loaded key for an environment variable name,
// letting the provider resolver read the keys captured at startup
// instead of the ambient environment.
func (c AIConfig) Lookup(name string) string {
	switch name {
	case "OPENAI_API_KEY":
		return c.OpenAIKey
	case "GEMINI_API_KEY":
		return c.GeminiKey
	case "GROQ_API_KEY":
		return c.GroqKey
	}
	return ""
}

// Validate checks the loaded values for fields that would make the
// process unusable.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Cache.SweepInterval <= 0 || c.Cache.SettingsTTL <= 0 || c.Cache.PromptsTTL <= 0 {
		return fmt.Errorf("cache intervals must be positive")
	}
	return nil
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		NATSURL:     getEnv("NATS_URL", ""),

		Cache: CacheConfig{
			SweepInterval: getEnvDuration("CACHE_SWEEP_INTERVAL", 10*time.Minute),
			SettingsTTL:   getEnvDuration("CACHE_SETTINGS_TTL", 5*time.Minute),
			PromptsTTL:    getEnvDuration("CACHE_PROMPTS_TTL", 10*time.Minute),
		},

		AI: AIConfig{
			OpenAIKey: getEnv("OPENAI_API_KEY", ""),
			GeminiKey: getEnv("GEMINI_API_KEY", ""),
			GroqKey:   getEnv("GROQ_API_KEY", ""),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
