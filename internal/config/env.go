package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadFromEnv loads configuration from environment variables, after
// loading an optional .env file (REVIEWGATE_ENV_FILE, then the config
// directory, then the working directory).
func LoadFromEnv(configDir string) (*Config, error) {
	cfg := New()

	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".reviewgate")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	cfg.Database.Path = filepath.Join(configDir, "reviewgate.db")

	if envFile := getEnvString("REVIEWGATE_ENV_FILE", ""); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file from %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil {
		_ = godotenv.Load() // current directory fallback, missing file is fine
	}

	cfg.GitHub = GitHubConfig{
		Token:          getEnvString("REVIEWGATE_GITHUB_TOKEN", getEnvString("GITHUB_TOKEN", "")),
		APIURL:         getEnvString("REVIEWGATE_GITHUB_API_URL", cfg.GitHub.APIURL),
		RequestTimeout: getEnvDuration("REVIEWGATE_GITHUB_TIMEOUT", cfg.GitHub.RequestTimeout),
	}

	cfg.Claude = ClaudeConfig{
		APIKey:      getEnvString("REVIEWGATE_CLAUDE_API_KEY", getEnvString("ANTHROPIC_API_KEY", "")),
		BaseURL:     getEnvString("REVIEWGATE_CLAUDE_BASE_URL", cfg.Claude.BaseURL),
		APIVersion:  getEnvString("REVIEWGATE_CLAUDE_API_VERSION", cfg.Claude.APIVersion),
		Model:       getEnvString("REVIEWGATE_CLAUDE_MODEL", cfg.Claude.Model),
		MaxTokens:   getEnvInt("REVIEWGATE_CLAUDE_MAX_TOKENS", cfg.Claude.MaxTokens),
		Temperature: getEnvFloat("REVIEWGATE_CLAUDE_TEMPERATURE", cfg.Claude.Temperature),
		Timeout:     getEnvDuration("REVIEWGATE_CLAUDE_TIMEOUT", cfg.Claude.Timeout),
		MaxRetries:  getEnvInt("REVIEWGATE_CLAUDE_MAX_RETRIES", cfg.Claude.MaxRetries),
		RatePerMin:  getEnvInt("REVIEWGATE_CLAUDE_RATE_PER_MIN", cfg.Claude.RatePerMin),
	}

	cfg.Review = ReviewConfig{
		BlockingSeverities: getEnvString("REVIEWGATE_BLOCKING_SEVERITIES", cfg.Review.BlockingSeverities),
		MaxFileChars:       getEnvInt("REVIEWGATE_MAX_FILE_CHARS", cfg.Review.MaxFileChars),
		MaxTotalChars:      getEnvInt("REVIEWGATE_MAX_TOTAL_CHARS", cfg.Review.MaxTotalChars),
		MaxPayloadChars:    getEnvInt("REVIEWGATE_MAX_PAYLOAD_CHARS", cfg.Review.MaxPayloadChars),
		MaxCommentChars:    getEnvInt("REVIEWGATE_MAX_COMMENT_CHARS", cfg.Review.MaxCommentChars),
	}

	cfg.Database = DatabaseConfig{
		Path:         getEnvString("REVIEWGATE_DB_PATH", cfg.Database.Path),
		BusyTimeout:  getEnvInt("REVIEWGATE_DB_BUSY_TIMEOUT", cfg.Database.BusyTimeout),
		ConnMaxLife:  getEnvDuration("REVIEWGATE_DB_CONN_MAX_LIFE", cfg.Database.ConnMaxLife),
		QueryTimeout: getEnvDuration("REVIEWGATE_DB_QUERY_TIMEOUT", cfg.Database.QueryTimeout),
	}

	cfg.Logging = LoggingConfig{
		Level:      getEnvString("REVIEWGATE_LOG_LEVEL", cfg.Logging.Level),
		Format:     getEnvString("REVIEWGATE_LOG_FORMAT", cfg.Logging.Format),
		Output:     getEnvString("REVIEWGATE_LOG_OUTPUT", cfg.Logging.Output),
		AddSource:  getEnvBool("REVIEWGATE_LOG_ADD_SOURCE", cfg.Logging.AddSource),
		TimeFormat: getEnvString("REVIEWGATE_LOG_TIME_FORMAT", cfg.Logging.TimeFormat),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
