// Package app implements the application layer for cask.
package app

import (
	"context"
	"fmt"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/cask/internal/engine/orchestrator"
	"go.trai.ch/zerr"
)

// BuildOptions configures a single build.
type BuildOptions struct {
	// Dir is the directory holding the project file.
	Dir string
	// ConfigFile is the project file name inside Dir.
	ConfigFile string

	VersionBump    string
	VersionName    string
	SkipValidation bool
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	orchestrator *orchestrator.Orchestrator
	telemetry    ports.Telemetry
	logger       ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	orch *orchestrator.Orchestrator,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		orchestrator: orch,
		telemetry:    telemetry,
		logger:       logger,
	}
}

// Build loads the project and builds a new version of its package.
func (a *App) Build(ctx context.Context, opts BuildOptions) (*domain.BuildResult, error) {
	defer func() {
		if err := a.telemetry.Close(); err != nil {
			a.logger.Warn(fmt.Sprintf("failed to close telemetry: %v", err))
		}
	}()

	// 1. Load the project
	project, err := a.configLoader.Load(opts.Dir, opts.ConfigFile)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	// 2. Validate overrides
	var bump domain.VersionBump
	if opts.VersionBump != "" {
		if bump, err = domain.ParseVersionBump(opts.VersionBump); err != nil {
			return nil, err
		}
	}

	// 3. Run the orchestrator
	result, err := a.orchestrator.Run(ctx, project, orchestrator.RunOptions{
		VersionBump:    bump,
		VersionName:    opts.VersionName,
		SkipValidation: opts.SkipValidation,
	})
	if err != nil {
		return nil, zerr.Wrap(err, "build failed")
	}
	return result, nil
}
