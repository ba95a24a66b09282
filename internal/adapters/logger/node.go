package logger

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/adapters/config"
	"go.trai.ch/cask/internal/core/ports"
)

// NodeID is the unique identifier for the logger node.
const NodeID graft.ID = "adapter.logger"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.Logger, error) {
			settings, err := graft.Dep[*config.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return NewWithLevel(os.Stderr, settings.LogLevel), nil
		},
	})
}
