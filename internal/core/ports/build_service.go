// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/cask/internal/core/domain"
)

// BuildService is the external service that stores packages, build requests and versions.
//
//go:generate go run go.uber.org/mock/mockgen -source=build_service.go -destination=mocks/mock_build_service.go -package=mocks
type BuildService interface {
	// FindPackages returns the non-deprecated packages matching the identity.
	FindPackages(ctx context.Context, id domain.PackageIdentity) ([]domain.PackageRecord, error)

	// CreatePackage creates a package record and returns its id.
	CreatePackage(ctx context.Context, spec domain.PackageSpec) (string, error)

	// CreateBuildRequest queues a build and returns the request id.
	CreateBuildRequest(ctx context.Context, spec domain.BuildRequestSpec) (string, error)

	// FindActiveRequests returns the requests of a package with the given tag
	// whose status is not Error.
	FindActiveRequests(ctx context.Context, packageID, tag string) ([]domain.BuildRequest, error)

	// GetBuildRequest returns the current state of a request.
	GetBuildRequest(ctx context.Context, requestID string) (domain.BuildRequest, error)

	// GetBuildRequestErrors returns the error messages recorded for a request.
	GetBuildRequestErrors(ctx context.Context, requestID string) ([]string, error)

	// LatestVersion returns the highest version of the package.
	// Returns nil, nil if the package has no versions.
	LatestVersion(ctx context.Context, packageID string) (*domain.VersionRecord, error)

	// GetVersion returns a version by id.
	GetVersion(ctx context.Context, versionID string) (domain.VersionRecord, error)
}
