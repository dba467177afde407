package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	envConfigDir = "SAASIFY_CONFIG_DIR"
	envAPIKey    = "GEMINI_API_KEY"
	envModel     = "SAASIFY_MODEL"

	defaultModel = "gemini-3-pro-preview"
)

// Load reads a .env file when present. A missing file is fine; real
// environment variables always win.
func Load() {
	_ = godotenv.Load()
}

// Dir returns the saasify config directory, creating it if needed.
// SAASIFY_CONFIG_DIR overrides the default for tests.
func Dir() (string, error) {
	if dir := os.Getenv(envConfigDir); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", fmt.Errorf("failed to create config directory: %w", err)
		}
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, ".saasify")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// DBPath returns the sqlite database location inside the config dir.
func DBPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "saasify.db"), nil
}

// APIKey returns the Gemini API key, empty when unset.
func APIKey() string {
	return os.Getenv(envAPIKey)
}

// Model returns the transform model name.
func Model() string {
	if m := os.Getenv(envModel); m != "" {
		return m
	}
	return defaultModel
}
