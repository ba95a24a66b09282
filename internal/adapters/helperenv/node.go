package helperenv

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/adapters/backend"
	"go.trai.ch/cask/internal/adapters/config"
	"go.trai.ch/cask/internal/adapters/logger"
	"go.trai.ch/cask/internal/core/ports"
)

// NodeID is the unique identifier for the environment provider node.
const NodeID graft.ID = "adapter.helperenv"

func init() {
	graft.Register(graft.Node[ports.EnvironmentProvider]{
		ID:        NodeID,
		DependsOn: []graft.ID{config.SettingsNodeID, logger.NodeID, backend.EnvironmentNodeID},
		Run: func(ctx context.Context) (ports.EnvironmentProvider, error) {
			settings, err := graft.Dep[*config.Settings](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			service, err := graft.Dep[ports.EnvironmentService](ctx)
			if err != nil {
				return nil, err
			}
			store, err := NewStore(settings.LeaseCachePath)
			if err != nil {
				return nil, err
			}
			return NewProvider(service, store, log, settings.EnvironmentName, WithPinnedID(settings.EnvironmentID)), nil
		},
	})
}
