// Package config loads service configuration from the environment.
// A Config is built once at startup and passed into constructors; nothing
// reads environment variables after that.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port        string
	Environment string

	DatabaseURL string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAITimeout time.Duration

	MaxFoodInputLength   int
	MaxBodyBytes         int64
	MaxHistoryPerSession int

	SessionCookieName string
	SessionTTL        time.Duration
}

// Load reads a .env file if present and builds the Config from the
// environment.
func Load() *Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITimeout: getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),

		MaxFoodInputLength:   getEnvInt("MAX_FOOD_INPUT_LENGTH", 500),
		MaxBodyBytes:         int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		MaxHistoryPerSession: getEnvInt("MAX_SEARCH_HISTORY_PER_SESSION", 50),

		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "session_id"),
		SessionTTL:        getEnvDuration("SESSION_TTL", 24*time.Hour),
	}
}

// IsProduction reports whether the service runs with production error
// responses (no stack detail leaked to clients).
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
