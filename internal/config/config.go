// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the harness configuration. It is constructed once at startup
// and passed to the client and runner rather than read ad hoc.
type Config struct {
	BaseURL         string        // service base address, no trailing slash
	APIKey          string        // sent as X-API-Key on every request
	OutputDir       string        // where downloaded artifacts are written
	HTTPTimeout     time.Duration // per-request client timeout
	PollInterval    time.Duration // wait between status fetches
	PollMaxAttempts int           // status fetches before a job is timed out
	MetricsPort     string        // /metrics listener during load runs, empty = disabled
}

// Load builds a Config from environment variables.
// API_KEY_FILE takes precedence over API_KEY, matching how secrets are
// mounted under Docker and Kubernetes.
func Load() *Config {
	apiKey := getSecretFile(getEnv("API_KEY_FILE", ""))
	if apiKey == "" {
		apiKey = getEnv("API_KEY", "dev-secret-key")
	}

	return &Config{
		BaseURL:         strings.TrimRight(getEnv("API_BASE", "http://localhost:3000"), "/"),
		APIKey:          apiKey,
		OutputDir:       getEnv("OUTPUT_DIR", "./test-output"),
		HTTPTimeout:     getDurationEnv("HTTP_TIMEOUT", 60*time.Second),
		PollInterval:    getDurationEnv("POLL_INTERVAL", time.Second),
		PollMaxAttempts: getIntEnv("POLL_MAX_ATTEMPTS", 30),
		MetricsPort:     getEnv("METRICS_PORT", ""),
	}
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv returns an integer environment variable or a default.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getDurationEnv returns a duration environment variable or a default.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getSecretFile reads a secret from a file path.
// Works with Docker secrets (/run/secrets/) and K8s secrets (mounted volumes).
func getSecretFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
