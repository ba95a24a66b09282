package ports

import "go.trai.ch/cask/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the project file from the working directory.
	// An empty file name means domain.DefaultConfigFile.
	Load(cwd, file string) (*domain.Project, error)
}
