package config

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// NodeID is the unique identifier for the project loader node.
	NodeID graft.ID = "adapter.config_loader"
	// SettingsNodeID is the unique identifier for the runtime settings node.
	SettingsNodeID graft.ID = "adapter.settings"

	// loggerNodeID matches logger.NodeID; the logger package imports this one.
	loggerNodeID graft.ID = "adapter.logger"
)

func init() {
	graft.Register(graft.Node[*Settings]{
		ID: SettingsNodeID,
		Run: func(ctx context.Context) (*Settings, error) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, zerr.Wrap(err, "failed to get working directory")
			}
			return LoadSettings(cwd, OverridesFromContext(ctx))
		},
	})

	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        NodeID,
		DependsOn: []graft.ID{loggerNodeID},
		Run: func(ctx context.Context) (ports.ConfigLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})
}
