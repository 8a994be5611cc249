package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/forestar-be/forestar-facturation/internal/logger"
)

// Checkpoint backends.
const (
	CheckpointFile     = "file"
	CheckpointPostgres = "postgres"
)

type Config struct {
	// Reconciliation API Configuration
	APIURL            string
	APIToken          string
	APITimeoutSeconds int

	// Google Sheets Configuration
	GoogleSheetURL        string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string

	// Export Configuration
	ExportDir      string
	ExportTimezone string

	// Checkpoint Configuration
	CheckpointBackend   string
	CheckpointFile      string
	CheckpointKey       string
	DatabaseURL         string
	PollIntervalSeconds int

	// Server Configuration
	ServerAddr   string
	CORSOrigins  []string
	ItemsPerPage int

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		APIURL:                getEnv("API_URL", "http://localhost:3001"),
		APIToken:              getEnv("API_TOKEN", ""),
		APITimeoutSeconds:     getEnvInt("API_TIMEOUT_SECONDS", 30),
		GoogleSheetURL:        getEnv("GOOGLE_SHEET_URL", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS", ""),
		ExportDir:             getEnv("EXPORT_DIR", "."),
		ExportTimezone:        getEnv("EXPORT_TIMEZONE", "Europe/Brussels"),
		CheckpointBackend:     strings.ToLower(getEnv("CHECKPOINT_BACKEND", CheckpointFile)),
		CheckpointFile:        getEnv("CHECKPOINT_FILE", ".reconciliation_state.json"),
		CheckpointKey:         getEnv("CHECKPOINT_KEY", "default"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		PollIntervalSeconds:   getEnvInt("POLL_INTERVAL_SECONDS", 5),
		ServerAddr:            getEnv("SERVER_ADDR", ":8080"),
		CORSOrigins:           splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		ItemsPerPage:          getEnvInt("ITEMS_PER_PAGE", 10),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_URL must be an absolute URL, got %q", c.APIURL)
	}
	if c.APITimeoutSeconds <= 0 {
		return fmt.Errorf("API_TIMEOUT_SECONDS must be a positive integer")
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be a positive integer")
	}
	if c.ItemsPerPage <= 0 {
		return fmt.Errorf("ITEMS_PER_PAGE must be a positive integer")
	}
	if _, err := time.LoadLocation(c.ExportTimezone); err != nil {
		return fmt.Errorf("EXPORT_TIMEZONE is not a known time zone: %w", err)
	}
	switch c.CheckpointBackend {
	case CheckpointFile:
		if c.CheckpointFile == "" {
			return fmt.Errorf("CHECKPOINT_FILE is required with the file backend")
		}
	case CheckpointPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required with the postgres backend")
		}
	default:
		return fmt.Errorf("CHECKPOINT_BACKEND must be %q or %q, got %q", CheckpointFile, CheckpointPostgres, c.CheckpointBackend)
	}
	return nil
}

// APITimeout returns the API request timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

// PollInterval returns the delay between two status requests.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Location returns the time zone used to render export dates.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ExportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns -1 for a value that is not an integer so validate rejects it.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return -1
	}
	return n
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
