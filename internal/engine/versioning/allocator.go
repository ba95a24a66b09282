// Package versioning predicts the version number of the next package build.
package versioning

import (
	"context"
	"fmt"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
)

// Allocator looks up the latest version of a package and applies the bump policy.
type Allocator struct {
	service ports.BuildService
	logger  ports.Logger
}

// New creates an Allocator.
func New(service ports.BuildService, logger ports.Logger) *Allocator {
	return &Allocator{service: service, logger: logger}
}

// NextVersion returns the version number the next build of the package
// should request. The build component is always domain.NextBuild.
func (a *Allocator) NextVersion(ctx context.Context, packageID string, bump domain.VersionBump) (domain.VersionNumber, error) {
	switch bump {
	case domain.BumpMajor, domain.BumpMinor, domain.BumpPatch:
	default:
		return domain.VersionNumber{}, zerr.With(zerr.Wrap(domain.ErrInvalidVersionBump, "next version"), "version_type", string(bump))
	}

	latest, err := a.service.LatestVersion(ctx, packageID)
	if err != nil {
		return domain.VersionNumber{}, zerr.With(zerr.Wrap(err, "failed to query latest version"), "package_id", packageID)
	}

	next := domain.NextVersion(latest, bump)
	switch {
	case latest == nil:
		a.logger.Info(fmt.Sprintf("package %s has no versions, starting at %s", packageID, next))
	case latest.Released:
		a.logger.Info(fmt.Sprintf("latest version %s is released, next %s version is %s", latest.Number(), bump, next))
	default:
		a.logger.Info(fmt.Sprintf("latest version %s is not released, reusing it as %s", latest.Number(), next))
	}
	return next, nil
}
