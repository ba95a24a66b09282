package app

import "go.trai.ch/cask/internal/core/ports"

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
	// Dir and ConfigFile locate the project file as resolved from the settings.
	Dir        string
	ConfigFile string
}
