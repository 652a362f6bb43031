// Package config holds the application configuration, loaded from the
// environment once at startup.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tildaslashalef/reviewgate/internal/loggy"
)

var (
	globalConfig *Config
	configMutex  sync.RWMutex
)

// Get returns the global configuration instance.
// If the configuration has not been initialized, it will return an error.
func Get() (*Config, error) {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return globalConfig, nil
}

// Set sets the global configuration instance
func Set(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()

	globalConfig = cfg
}

// Config represents the complete application configuration
type Config struct {
	GitHub   GitHubConfig
	Claude   ClaudeConfig
	Review   ReviewConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// GitHubConfig represents GitHub-specific configuration
type GitHubConfig struct {
	Token          string        // GitHub Personal Access Token
	APIURL         string        // GitHub API base URL
	RequestTimeout time.Duration // Request timeout for GitHub API
}

// ClaudeConfig holds configuration for the Claude API client
type ClaudeConfig struct {
	APIKey      string
	BaseURL     string
	APIVersion  string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
	RatePerMin  int // request budget per minute, 0 disables limiting
}

// ReviewConfig tunes the sanitization pipeline and the gate
type ReviewConfig struct {
	BlockingSeverities string // JSON array of severity strings
	MaxFileChars       int    // per-file patch ceiling
	MaxTotalChars      int    // payload accumulation ceiling
	MaxPayloadChars    int    // hard ceiling on the final payload
	MaxCommentChars    int    // ceiling on the rendered comment
}

// DatabaseConfig represents the audit store configuration
type DatabaseConfig struct {
	Path         string        // Path to the SQLite database file
	BusyTimeout  int           // Busy timeout in milliseconds
	ConnMaxLife  time.Duration // Maximum connection lifetime
	QueryTimeout time.Duration // Query timeout
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string // debug, info, warn, error
	Format     string // text or json
	Output     string // stdout, stderr, or file path
	AddSource  bool   // Include source code position in logs
	TimeFormat string // Time format for logs (empty uses RFC3339)
}

// New returns a Config populated with defaults
func New() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIURL:         "https://api.github.com",
			RequestTimeout: 30 * time.Second,
		},
		Claude: ClaudeConfig{
			BaseURL:     "https://api.anthropic.com",
			APIVersion:  "2023-06-01",
			Model:       "claude-3-5-sonnet-20241022",
			MaxTokens:   4096,
			Temperature: 0.2,
			Timeout:     120 * time.Second,
			MaxRetries:  3,
			RatePerMin:  20,
		},
		Review: ReviewConfig{
			BlockingSeverities: `["critical","security"]`,
			MaxFileChars:       12_000,
			MaxTotalChars:      48_000,
			MaxPayloadChars:    60_000,
			MaxCommentChars:    60_000,
		},
		Database: DatabaseConfig{
			BusyTimeout:  5000,
			ConnMaxLife:  time.Hour,
			QueryTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			TimeFormat: time.RFC3339,
		},
	}
}

// GetLoggingConfig converts the logging section into a loggy.Config
func (c *Config) GetLoggingConfig() loggy.Config {
	var level slog.Level
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return loggy.Config{
		Level:      level,
		Format:     c.Logging.Format,
		Output:     c.Logging.Output,
		AddSource:  c.Logging.AddSource,
		TimeFormat: c.Logging.TimeFormat,
	}
}

// Validate checks settings that must be fatal at startup
func (c *Config) Validate() error {
	if c.Review.MaxFileChars <= 0 || c.Review.MaxTotalChars <= 0 || c.Review.MaxPayloadChars <= 0 {
		return fmt.Errorf("payload ceilings must be positive")
	}
	if c.Review.MaxTotalChars > c.Review.MaxPayloadChars {
		return fmt.Errorf("total payload ceiling %d exceeds the global ceiling %d",
			c.Review.MaxTotalChars, c.Review.MaxPayloadChars)
	}
	return nil
}
