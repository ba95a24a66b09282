// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/cask/internal/adapters/backend"
	_ "go.trai.ch/cask/internal/adapters/bundle"
	_ "go.trai.ch/cask/internal/adapters/config"
	_ "go.trai.ch/cask/internal/adapters/fs"
	_ "go.trai.ch/cask/internal/adapters/helperenv"
	_ "go.trai.ch/cask/internal/adapters/logger"
	_ "go.trai.ch/cask/internal/adapters/source"
	_ "go.trai.ch/cask/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/cask/internal/app"
	_ "go.trai.ch/cask/internal/engine/orchestrator"
	_ "go.trai.ch/cask/internal/engine/poller"
	_ "go.trai.ch/cask/internal/engine/resolver"
	_ "go.trai.ch/cask/internal/engine/submitter"
	_ "go.trai.ch/cask/internal/engine/versioning"
)
