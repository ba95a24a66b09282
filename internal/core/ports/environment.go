package ports

import (
	"context"

	"go.trai.ch/cask/internal/core/domain"
)

// EnvironmentService manages the short-lived helper environments used to
// resolve namespaced dependencies.
//
//go:generate go run go.uber.org/mock/mockgen -source=environment.go -destination=mocks/mock_environment.go -package=mocks
type EnvironmentService interface {
	// CreateEnvironment provisions a new helper environment.
	CreateEnvironment(ctx context.Context, name string) (domain.EnvironmentRecord, error)

	// ResolveNamespaced maps each namespaced dependency to the subscriber version id
	// installed in the environment. The result has one entry per input, in order.
	ResolveNamespaced(ctx context.Context, envID string, deps []domain.NamespacedDependency) ([]string, error)
}

// EnvironmentProvider hands out the helper environment for a run.
type EnvironmentProvider interface {
	// Acquire returns a live environment, creating or recreating it when needed.
	Acquire(ctx context.Context) (domain.EnvironmentRecord, error)
}
