package orchestrator

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/adapters/backend"            //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/adapters/bundle"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/adapters/config"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/adapters/source"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/cask/internal/engine/poller"
	"go.trai.ch/cask/internal/engine/resolver"
	"go.trai.ch/cask/internal/engine/submitter"
)

// NodeID is the unique identifier for the orchestrator Graft node.
const NodeID graft.ID = "engine.orchestrator"

func init() {
	graft.Register(graft.Node[*Orchestrator]{
		ID: NodeID,
		DependsOn: []graft.ID{
			config.SettingsNodeID,
			resolver.NodeID,
			submitter.NodeID,
			poller.NodeID,
			bundle.NodeID,
			source.NodeID,
			backend.NodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Orchestrator, error) {
			settings, err := graft.Dep[*config.Settings](ctx)
			if err != nil {
				return nil, err
			}
			var c Components
			if c.Resolver, err = graft.Dep[*resolver.Resolver](ctx); err != nil {
				return nil, err
			}
			if c.Submitter, err = graft.Dep[*submitter.Submitter](ctx); err != nil {
				return nil, err
			}
			if c.Poller, err = graft.Dep[*poller.Poller](ctx); err != nil {
				return nil, err
			}
			if c.Bundler, err = graft.Dep[ports.Bundler](ctx); err != nil {
				return nil, err
			}
			if c.Fetcher, err = graft.Dep[ports.SourceFetcher](ctx); err != nil {
				return nil, err
			}
			if c.Service, err = graft.Dep[ports.BuildService](ctx); err != nil {
				return nil, err
			}
			if c.Telemetry, err = graft.Dep[ports.Telemetry](ctx); err != nil {
				return nil, err
			}
			if c.Logger, err = graft.Dep[ports.Logger](ctx); err != nil {
				return nil, err
			}
			return New(c, poller.Options{
				Interval:    settings.PollInterval,
				MaxInterval: settings.PollMaxInterval,
				Timeout:     settings.PollTimeout,
			}), nil
		},
	})
}
