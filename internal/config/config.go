package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Environment variable names.
const (
	EnvClientSecretPath     = "CLIENT_SECRET_PATH"
	EnvFolderID             = "FOLDER_ID"
	EnvTokenPath            = "TOKEN_PATH"
	EnvCallTimeout          = "CALL_TIMEOUT"
	EnvRetryMaxAttempts     = "RETRY_MAX_ATTEMPTS"
	EnvRetryInitialInterval = "RETRY_INITIAL_INTERVAL"
	EnvLogLevel             = "LOG_LEVEL"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultTokenPath            = "~/.mcp_google_workspace_token.json"
	DefaultCallTimeout          = 30 * time.Second
	DefaultRetryMaxAttempts     = 3
	DefaultRetryInitialInterval = 500 * time.Millisecond
	DefaultLogLevel             = "info"
)

// Config holds the settings shared by every command.
type Config struct {
	// ClientSecretPath is the OAuth client secret JSON file.
	ClientSecretPath string

	// FolderID is the Drive folder used for listing and for new spreadsheets.
	FolderID string

	// TokenPath is where the cached token is read from and written to.
	TokenPath string

	// CallTimeout bounds a single vendor API attempt.
	CallTimeout time.Duration

	// RetryMaxAttempts is the total number of attempts for retryable vendor errors.
	RetryMaxAttempts int

	// RetryInitialInterval is the first backoff interval between attempts.
	RetryInitialInterval time.Duration

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// MissingVariableError reports a required environment variable that is unset.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("environment variable %s is required but not set", e.Name)
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := Config{
		ClientSecretPath:     os.Getenv(EnvClientSecretPath),
		FolderID:             os.Getenv(EnvFolderID),
		TokenPath:            getEnvOrDefault(EnvTokenPath, DefaultTokenPath),
		CallTimeout:          getEnvDurationOrDefault(EnvCallTimeout, DefaultCallTimeout),
		RetryMaxAttempts:     getEnvIntOrDefault(EnvRetryMaxAttempts, DefaultRetryMaxAttempts),
		RetryInitialInterval: getEnvDurationOrDefault(EnvRetryInitialInterval, DefaultRetryInitialInterval),
		LogLevel:             getEnvOrDefault(EnvLogLevel, DefaultLogLevel),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	tokenPath, err := ExpandHome(cfg.TokenPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve %s: %w", EnvTokenPath, err)
	}
	cfg.TokenPath = tokenPath

	return cfg, nil
}

// Validate checks that required values are present and bounds are sane.
func (c *Config) Validate() error {
	if c.ClientSecretPath == "" {
		return &MissingVariableError{Name: EnvClientSecretPath}
	}
	if c.FolderID == "" {
		return &MissingVariableError{Name: EnvFolderID}
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", EnvCallTimeout, c.CallTimeout)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", EnvRetryMaxAttempts, c.RetryMaxAttempts)
	}
	if c.RetryInitialInterval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", EnvRetryInitialInterval, c.RetryInitialInterval)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns the int value of an environment variable or a default value.
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// getEnvDurationOrDefault returns the duration value of an environment variable or a default value.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
