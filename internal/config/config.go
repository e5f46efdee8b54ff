// Package config provides the typed application configuration and the
// environment-based loading used by every component. Components receive
// their config section explicitly at construction; nothing reads the
// environment after load time.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// Global configuration instance
	globalConfig *Config
	configMutex  sync.RWMutex
)

// Get returns the global configuration instance
// If the configuration has not been initialized, it will return an error
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
	Toggl   TogglConfig
	Jira    JiraConfig
	Ledger  LedgerConfig
	Logging LoggingConfig

	configDir string // Internal: directory the config was loaded from
}

// TogglConfig holds configuration for the Toggl Track API client
type TogglConfig struct {
	APIToken string // Toggl Track API token
	BaseURL  string // Toggl API base URL

	// Optional scoping: zero means "no filter"
	WorkspaceID int64 // Restrict fetched entries to this workspace
	ProjectID   int64 // Restrict fetched entries to this project

	// Request settings
	Timeout    time.Duration // Request timeout
	MaxRetries int           // Maximum number of retries on transport failure

	// Rate limiting
	RequestsPerMinute int
	BurstLimit        int
}

// JiraConfig holds configuration for the Jira Cloud API client
type JiraConfig struct {
	Email    string // Jira account email (basic auth username)
	APIToken string // Jira API token (basic auth password)
	Domain   string // Jira site domain, e.g. "example.atlassian.net"
	BaseURL  string // Full REST API base URL; derived from Domain when empty

	// Request settings
	Timeout    time.Duration // Request timeout
	MaxRetries int           // Maximum number of retries on transport failure

	// Rate limiting
	RequestsPerMinute int
	BurstLimit        int
}

// LedgerConfig holds configuration for the persisted sync ledger
type LedgerConfig struct {
	Path string // Path to the ledger JSON file
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string // debug, info, warn, error
	Format     string // text or json
	Output     string // stdout, stderr, or file path
	AddSource  bool   // Include source code position in logs
	TimeFormat string // Time format for logs (empty uses RFC3339)
}

// New creates a new configuration with zero values
func New() *Config {
	return &Config{}
}

// ConfigDir returns the directory the configuration was loaded from
func (c *Config) ConfigDir() string {
	return c.configDir
}

// Validate checks the structural parts of the configuration. Credential
// presence is checked separately by ValidateCredentials so that commands
// which never talk to the remote APIs (history, config) still work.
func (c *Config) Validate() error {
	if err := c.validateLedger(); err != nil {
		return fmt.Errorf("ledger config: %w", err)
	}

	if err := c.validateLogging(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if c.Toggl.Timeout <= 0 {
		return fmt.Errorf("toggl timeout must be positive")
	}

	if c.Jira.Timeout <= 0 {
		return fmt.Errorf("jira timeout must be positive")
	}

	return nil
}

// ValidateCredentials verifies that every setting required to reach the
// remote APIs is present.
func (c *Config) ValidateCredentials() error {
	var missing []string

	if c.Toggl.APIToken == "" {
		missing = append(missing, "TOGGLSYNC_TOGGL_API_TOKEN")
	}
	if c.Jira.APIToken == "" {
		missing = append(missing, "TOGGLSYNC_JIRA_API_TOKEN")
	}
	if c.Jira.Email == "" {
		missing = append(missing, "TOGGLSYNC_JIRA_EMAIL")
	}
	if c.Jira.Domain == "" && c.Jira.BaseURL == "" {
		missing = append(missing, "TOGGLSYNC_JIRA_DOMAIN")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}

func (c *Config) validateLedger() error {
	if c.Ledger.Path == "" {
		return fmt.Errorf("ledger path cannot be empty")
	}

	// Create the directory if it doesn't exist
	dir := filepath.Dir(c.Ledger.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory for ledger: %w", err)
		}
	}

	return nil
}

func (c *Config) validateLogging() error {
	level := strings.ToLower(c.Logging.Level)
	if level != "debug" && level != "info" && level != "warn" && level != "error" {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// ParseLogLevel converts a string log level to slog.Level
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnvString returns a string from the environment variable
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an int from the environment variable
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 from the environment variable
func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool returns a bool from the environment variable
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration returns a time.Duration from the environment variable
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
