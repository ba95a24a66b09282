package submitter

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/adapters/backend" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/adapters/fs"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/adapters/logger"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/cask/internal/engine/versioning"
)

// NodeID is the unique identifier for the submitter Graft node.
const NodeID graft.ID = "engine.submitter"

func init() {
	graft.Register(graft.Node[*Submitter]{
		ID:        NodeID,
		DependsOn: []graft.ID{backend.NodeID, fs.HasherNodeID, versioning.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Submitter, error) {
			service, err := graft.Dep[ports.BuildService](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			allocator, err := graft.Dep[*versioning.Allocator](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(service, hasher, allocator, log), nil
		},
	})
}
