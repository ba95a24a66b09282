package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/adapters/backend"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/adapters/helperenv" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/core/ports"
)

// NodeID is the unique identifier for the resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		DependsOn: []graft.ID{helperenv.NodeID, backend.EnvironmentNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Resolver, error) {
			environments, err := graft.Dep[ports.EnvironmentProvider](ctx)
			if err != nil {
				return nil, err
			}
			service, err := graft.Dep[ports.EnvironmentService](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(environments, service, log), nil
		},
	})
}
