package ports

import "go.trai.ch/cask/internal/core/domain"

// LeaseStore persists the helper environment lease between runs.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type LeaseStore interface {
	// Get returns the stored lease for the environment name.
	// Returns nil, nil if not found.
	Get(name string) (*domain.EnvironmentRecord, error)

	// Put stores the lease.
	Put(record domain.EnvironmentRecord) error
}
