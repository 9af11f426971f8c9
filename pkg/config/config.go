// Package config provides configuration management for the cashbook client.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	API     APIConfig
	DataDir string
	Debug   bool
}

// APIConfig represents transaction service configuration.
type APIConfig struct {
	URL     string
	Timeout time.Duration
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	timeoutSeconds, err := parseIntEnv("CASHBOOK_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid CASHBOOK_TIMEOUT_SECONDS: %w", err)
	}

	config := &Config{
		API: APIConfig{
			URL:     getEnvOrDefault("CASHBOOK_API_URL", "http://localhost:8080"),
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		DataDir: getEnvOrDefault("CASHBOOK_DATA_DIR", defaultDataDir()),
		Debug:   os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate validates the configuration.
// It checks that all named fields are set and reports every missing one.
func (c *Config) Validate(required ...string) error {
	var missing []string

	for _, name := range required {
		var value string
		switch name {
		case "api.url":
			value = c.API.URL
		case "dataDir":
			value = c.DataDir
		}

		if value == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// defaultDataDir returns the per-user data directory, falling back to a
// relative directory when the home directory cannot be resolved.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cashbook"
	}
	return filepath.Join(home, ".cashbook")
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses an int from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}

	return parsed, nil
}
