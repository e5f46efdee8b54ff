package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// LoadFromEnv loads configuration from environment variables
// Parameters:
// - configDir: Directory containing config files (or empty for default)
// - configFilePath: Path to .env file (or empty for default)
func LoadFromEnv(configDir string, configFilePath string) (*Config, error) {
	cfg := New()

	// If configDir is empty, use the default
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".togglsync")

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	cfg.configDir = configDir

	// Default ledger and log paths live in the config directory
	defaultLedgerPath := filepath.Join(configDir, "sync-ledger.json")
	defaultLogPath := filepath.Join(configDir, "togglsync.log")

	// Use provided config file path or default
	if configFilePath == "" {
		configFilePath = filepath.Join(configDir, ".env")
	}

	// Check if ENV_FILE_PATH is set to load from a custom .env file
	envFilePath := getEnvString("ENV_FILE_PATH", "")
	if envFilePath != "" {
		// User specified a custom env file path
		if err := godotenv.Load(envFilePath); err != nil {
			return nil, fmt.Errorf("failed to load env file from %s: %w", envFilePath, err)
		}
	} else {
		// Try to load from config directory first
		if err := godotenv.Load(configFilePath); err != nil {
			// Then try current directory as fallback
			_ = godotenv.Load() // Ignore errors if file doesn't exist
		}
	}

	// Toggl Configuration
	cfg.Toggl = TogglConfig{
		APIToken:          getEnvString("TOGGLSYNC_TOGGL_API_TOKEN", ""),
		BaseURL:           getEnvString("TOGGLSYNC_TOGGL_BASE_URL", "https://api.track.toggl.com/api/v9"),
		WorkspaceID:       getEnvInt64("TOGGLSYNC_TOGGL_WORKSPACE_ID", 0),
		ProjectID:         getEnvInt64("TOGGLSYNC_TOGGL_PROJECT_ID", 0),
		Timeout:           getEnvDuration("TOGGLSYNC_TOGGL_TIMEOUT", 30*time.Second),
		MaxRetries:        getEnvInt("TOGGLSYNC_TOGGL_MAX_RETRIES", 3),
		RequestsPerMinute: getEnvInt("TOGGLSYNC_TOGGL_REQUESTS_PER_MINUTE", 60),
		BurstLimit:        getEnvInt("TOGGLSYNC_TOGGL_BURST_LIMIT", 5),
	}

	// Jira Configuration
	jiraDomain := getEnvString("TOGGLSYNC_JIRA_DOMAIN", "")
	jiraBaseURL := getEnvString("TOGGLSYNC_JIRA_BASE_URL", "")
	if jiraBaseURL == "" && jiraDomain != "" {
		jiraBaseURL = fmt.Sprintf("https://%s/rest/api/3", jiraDomain)
	}

	cfg.Jira = JiraConfig{
		Email:             getEnvString("TOGGLSYNC_JIRA_EMAIL", ""),
		APIToken:          getEnvString("TOGGLSYNC_JIRA_API_TOKEN", ""),
		Domain:            jiraDomain,
		BaseURL:           jiraBaseURL,
		Timeout:           getEnvDuration("TOGGLSYNC_JIRA_TIMEOUT", 30*time.Second),
		MaxRetries:        getEnvInt("TOGGLSYNC_JIRA_MAX_RETRIES", 3),
		RequestsPerMinute: getEnvInt("TOGGLSYNC_JIRA_REQUESTS_PER_MINUTE", 60),
		BurstLimit:        getEnvInt("TOGGLSYNC_JIRA_BURST_LIMIT", 5),
	}

	// Ledger Configuration
	cfg.Ledger = LedgerConfig{
		Path: getEnvString("TOGGLSYNC_LEDGER_PATH", defaultLedgerPath),
	}

	// Logging Configuration
	cfg.Logging = LoggingConfig{
		Level:      getEnvString("TOGGLSYNC_LOG_LEVEL", "info"),
		Format:     getEnvString("TOGGLSYNC_LOG_FORMAT", "text"),
		Output:     getEnvString("TOGGLSYNC_LOG_OUTPUT", defaultLogPath),
		AddSource:  getEnvBool("TOGGLSYNC_LOG_ADD_SOURCE", false),
		TimeFormat: getEnvString("TOGGLSYNC_LOG_TIME_FORMAT", time.RFC3339),
	}

	// Validate the configuration
	return cfg, cfg.Validate()
}
