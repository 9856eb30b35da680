// Package config loads the process environment, .env included, and
// exposes typed getters for the handful of settings the habitat reads.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/vestalabs/habitat/logging"
)

func init() {
	if err := godotenv.Load(); err != nil {
		logging.Default().Debug(".env file not found")
	}

	// Optional keys; the engines fall back to templates without them.
	for _, env := range []string{"OPENAI_API_KEY", "SERP_API_KEY"} {
		if os.Getenv(env) == "" {
			logging.Default().Warn("environment variable not set", "name", env)
		}
	}
}

// Env returns the variable's value, or fallback when unset or blank.
func Env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvInt returns the variable parsed as an int, or fallback when unset
// or unparseable.
func EnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logging.Default().Warn("environment variable is not a number", "name", key, "value", v)
		return fallback
	}
	return n
}

// APIPort is the HTTP listen port.
func APIPort() int {
	return EnvInt("HABITAT_PORT", 8080)
}

// DataDir is the storage root. Empty means the storage layer's default.
func DataDir() string {
	return Env("HABITAT_DATA_DIR", "")
}

// NATSURL points at an external broker. Empty means run one embedded.
func NATSURL() string {
	return Env("HABITAT_NATS_URL", "")
}

// OpenAIKey enables LLM-backed experiment flavor when set.
func OpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// SerpKey enables web enrichment for the garden when set.
func SerpKey() string {
	return os.Getenv("SERP_API_KEY")
}

// LogLevel is the console log level name.
func LogLevel() string {
	return Env("HABITAT_LOG_LEVEL", "info")
}
