// Package app provides application initialization and lifecycle management
package app

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/reviewgate/internal/audit"
	"github.com/tildaslashalef/reviewgate/internal/config"
	"github.com/tildaslashalef/reviewgate/internal/database"
	"github.com/tildaslashalef/reviewgate/internal/git"
	"github.com/tildaslashalef/reviewgate/internal/github"
	"github.com/tildaslashalef/reviewgate/internal/llm"
	"github.com/tildaslashalef/reviewgate/internal/loggy"
	"github.com/tildaslashalef/reviewgate/internal/pipeline"
)

// App holds the application instance with its dependencies
type App struct {
	Config *config.Config
	Git    *git.Service
	Audits audit.Repository

	github   *github.Service
	pipeline *pipeline.Service
}

// New initializes the application: configuration, logging, the audit
// store, and the review pipeline.
func New() (*App, error) {
	cfg, err := config.LoadFromEnv("")
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	config.Set(cfg)

	if err := loggy.Init(cfg.GetLoggingConfig()); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := loggy.GetGlobalLogger()

	loggy.Debug("application initializing", "log_level", cfg.Logging.Level)

	if err := database.InitDB(cfg); err != nil {
		return nil, fmt.Errorf("initializing audit store: %w", err)
	}
	db, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("getting database connection: %w", err)
	}

	audits := audit.NewSQLRepository(db, logger)

	return &App{
		Config: cfg,
		Git:    git.NewService(logger),
		Audits: audits,
	}, nil
}

// Pipeline lazily builds the review pipeline so that commands which
// never call the model work without an API key.
func (a *App) Pipeline() (*pipeline.Service, error) {
	if a.pipeline != nil {
		return a.pipeline, nil
	}

	logger := loggy.GetGlobalLogger()

	llmClient, err := llm.NewClient(a.Config, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing model client: %w", err)
	}

	pipe, err := pipeline.NewService(a.Config, logger, llmClient, a.Audits)
	if err != nil {
		return nil, fmt.Errorf("initializing review pipeline: %w", err)
	}

	a.pipeline = pipe
	return pipe, nil
}

// GitHub lazily builds the GitHub service so that local reviews work
// without a token.
func (a *App) GitHub() (*github.Service, error) {
	if a.github != nil {
		return a.github, nil
	}

	client, err := github.NewClient(&a.Config.GitHub)
	if err != nil {
		return nil, fmt.Errorf("initializing GitHub client: %w", err)
	}

	a.github = github.NewService(client, loggy.GetGlobalLogger())
	return a.github, nil
}

// Shutdown releases application resources.
func (a *App) Shutdown() error {
	loggy.Debug("application shutting down")
	return database.Close()
}

// FromContext retrieves the App instance stored in the CLI metadata.
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
