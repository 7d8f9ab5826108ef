package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Stat source selection
const (
	SourceWebSocket = "ws"
	SourceMemory    = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// Producer IPC endpoint
	ProducerURL string

	// Collection server base URL (settings file may override it)
	ServerURL string

	// Upload request timeout
	UploadTimeout time.Duration

	// Diagnostics surface listen address
	DiagAddr string

	// Resource paths
	DataDir      string
	SettingsPath string
	JournalPath  string

	// Stat source: "ws" (producer plugin) or "memory" (development)
	StatSource string

	// Environment
	Environment string // "development" or "production"
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	dataDir := getEnvWithDefault("DATA_DIR", "./data")

	cfg := &Config{
		ProducerURL:   getEnvWithDefault("PRODUCER_URL", "ws://127.0.0.1:7791/ipc"),
		ServerURL:     os.Getenv("SERVER_URL"),
		UploadTimeout: getEnvDuration("UPLOAD_TIMEOUT", 30*time.Second),
		DiagAddr:      getEnvWithDefault("DIAG_ADDR", "127.0.0.1:7790"),
		DataDir:       dataDir,
		SettingsPath:  getEnvWithDefault("SETTINGS_PATH", filepath.Join(dataDir, "settings.json")),
		JournalPath:   getEnvWithDefault("JOURNAL_PATH", filepath.Join(dataDir, "journal.db")),
		StatSource:    getEnvWithDefault("STAT_SOURCE", SourceWebSocket),
		Environment:   getEnvWithDefault("ENVIRONMENT", "development"),
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// validate checks if all required configuration is present
func (c *Config) validate() error {
	if c.StatSource != SourceWebSocket && c.StatSource != SourceMemory {
		return fmt.Errorf("STAT_SOURCE must be %q or %q, got %q", SourceWebSocket, SourceMemory, c.StatSource)
	}
	if c.StatSource == SourceWebSocket && c.ProducerURL == "" {
		return fmt.Errorf("PRODUCER_URL is required")
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration returns a duration env var in seconds or default if unset/invalid
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
