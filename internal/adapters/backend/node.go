package backend

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/adapters/config"
	"go.trai.ch/cask/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the build service node.
	NodeID graft.ID = "adapter.backend"
	// EnvironmentNodeID is the unique identifier for the environment service node.
	EnvironmentNodeID graft.ID = "adapter.backend.environment"
)

func init() {
	graft.Register(graft.Node[ports.BuildService]{
		ID:        NodeID,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.BuildService, error) {
			settings, err := graft.Dep[*config.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return Open(settings)
		},
	})

	graft.Register(graft.Node[ports.EnvironmentService]{
		ID:        EnvironmentNodeID,
		DependsOn: []graft.ID{NodeID},
		Run: func(ctx context.Context) (ports.EnvironmentService, error) {
			svc, err := graft.Dep[ports.BuildService](ctx)
			if err != nil {
				return nil, err
			}
			return svc.(Service), nil
		},
	})
}
