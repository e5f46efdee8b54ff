// Package app provides the application initialization and lifecycle management
package app

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/togglsync/internal/config"
	"github.com/tildaslashalef/togglsync/internal/jira"
	"github.com/tildaslashalef/togglsync/internal/ledger"
	"github.com/tildaslashalef/togglsync/internal/loggy"
	"github.com/tildaslashalef/togglsync/internal/reconcile"
	"github.com/tildaslashalef/togglsync/internal/toggl"
)

// App represents the application instance with its dependencies
type App struct {
	Config     *config.Config
	Toggl      *toggl.Client
	Jira       *jira.Client
	Ledger     *ledger.Ledger
	Reconciler *reconcile.Service
}

// New initializes a new application instance with all its dependencies
func New() (*App, error) {
	cfg, err := initConfig()
	if err != nil {
		return nil, err
	}

	if err := initLogger(cfg); err != nil {
		return nil, err
	}

	loggy.Debug("Application initializing", "log_level", cfg.Logging.Level)

	return initServices(cfg), nil
}

// initConfig loads and sets up the application configuration
func initConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv("", "")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	config.Set(cfg)
	return cfg, nil
}

// initLogger initializes the logging system
func initLogger(cfg *config.Config) error {
	err := loggy.Init(loggy.Config{
		Level:      config.ParseLogLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// initServices wires the API clients, ledger and reconciliation engine
func initServices(cfg *config.Config) *App {
	logger := loggy.GetGlobalLogger()

	togglClient := toggl.NewClient(cfg.Toggl, logger)
	jiraClient := jira.NewClient(cfg.Jira, logger)
	syncLedger := ledger.New(cfg.Ledger.Path, logger)

	reconciler := reconcile.NewService(togglClient, jiraClient, syncLedger, logger)

	return &App{
		Config:     cfg,
		Toggl:      togglClient,
		Jira:       jiraClient,
		Ledger:     syncLedger,
		Reconciler: reconciler,
	}
}

// Shutdown gracefully shuts down the application
func (app *App) Shutdown() error {
	loggy.Debug("Shutting down application")
	return nil
}

// FromContext retrieves the App instance from the CLI context
func FromContext(c *cli.Context) (*App, error) {
	if c.App.Metadata == nil {
		return nil, fmt.Errorf("app metadata not found in context")
	}

	app, ok := c.App.Metadata["app"].(*App)
	if !ok {
		return nil, fmt.Errorf("app instance not found in context")
	}

	return app, nil
}
