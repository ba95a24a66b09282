package poller

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/adapters/backend" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/adapters/logger"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/core/ports"
)

// NodeID is the unique identifier for the poller Graft node.
const NodeID graft.ID = "engine.poller"

func init() {
	graft.Register(graft.Node[*Poller]{
		ID:        NodeID,
		DependsOn: []graft.ID{backend.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Poller, error) {
			service, err := graft.Dep[ports.BuildService](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(service, log), nil
		},
	})
}
