package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings for the CLI
type Config struct {
	// API Configuration
	API APIConfig

	// Logging Configuration
	Logging LoggingConfig
}

// APIConfig holds settings that apply to every outbound API call
type APIConfig struct {
	URL     string        // Overrides the server URL from manageday.json when set
	Timeout time.Duration // Per-request network timeout
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// DefaultTimeout matches the pipeline contract: a fixed per-call network
// timeout, after which the request surfaces as a network error.
const DefaultTimeout = 15 * time.Second

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// API URL override - normally the URL comes from manageday.json
	apiURL := os.Getenv("MANAGEDAY_API_URL")

	timeout := DefaultTimeout
	if raw := os.Getenv("MANAGEDAY_TIMEOUT"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			timeout = parsed
		}
	}

	// Logging configuration - quiet by default for a CLI
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "warn"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "console"
	}

	return &Config{
		API: APIConfig{
			URL:     apiURL,
			Timeout: timeout,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}
