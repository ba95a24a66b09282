// Package backend selects the build service implementation named in the settings.
package backend

import (
	"go.trai.ch/cask/internal/adapters/config"
	"go.trai.ch/cask/internal/adapters/hub"
	"go.trai.ch/cask/internal/adapters/localhub"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
)

// Service is a build service that can also manage helper environments.
type Service interface {
	ports.BuildService
	ports.EnvironmentService
}

// Open returns the build service for the configured backend.
func Open(settings *config.Settings) (Service, error) {
	switch settings.Backend {
	case config.BackendHTTP:
		return hub.New(settings.HubURL, settings.Token), nil
	case config.BackendLocal:
		return localhub.Open(settings.LocalStatePath, localhub.WithEnvironmentTTL(settings.EnvironmentTTL))
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrSettingsLoadFailed, "unknown backend"), "backend", settings.Backend)
	}
}
