// Package submitter creates build requests, reusing earlier requests for identical content.
package submitter

import (
	"context"
	"fmt"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/cask/internal/engine/versioning"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Submission describes the build request serving a SubmitRequest.
type Submission struct {
	PackageID   string
	RequestID   string
	ContentHash string
	// Reused is set when an earlier request for the same content was found.
	// VersionNumber is only set for new requests.
	Reused        bool
	VersionNumber domain.VersionNumber
}

// Submitter implements the find-or-create and dedup logic around build requests.
type Submitter struct {
	service   ports.BuildService
	hasher    ports.Hasher
	allocator *versioning.Allocator
	logger    ports.Logger

	// inflight makes the dedup check and the request creation atomic per package and hash.
	inflight singleflight.Group
}

// New creates a Submitter.
func New(service ports.BuildService, hasher ports.Hasher, allocator *versioning.Allocator, logger ports.Logger) *Submitter {
	return &Submitter{
		service:   service,
		hasher:    hasher,
		allocator: allocator,
		logger:    logger,
	}
}

// Submit returns the build request for the bundle. A request of the same
// package tagged with the bundle's content hash that has not failed is
// returned as is; otherwise a new request is created with the next version
// number.
func (s *Submitter) Submit(ctx context.Context, req domain.SubmitRequest) (Submission, error) {
	if len(req.Bundle) == 0 {
		return Submission{}, zerr.With(zerr.Wrap(domain.ErrMalformedContent, "empty bundle"), "package", req.Package.Name)
	}
	hash := s.hasher.ContentHash(req.Bundle)

	key := fmt.Sprintf("%s\x00%s\x00%s\x00%s", req.Package.Name, req.Package.Type, req.Package.Namespace, hash)
	v, err, _ := s.inflight.Do(key, func() (any, error) {
		return s.submit(ctx, req, hash)
	})
	if err != nil {
		return Submission{}, err
	}
	return v.(Submission), nil
}

func (s *Submitter) submit(ctx context.Context, req domain.SubmitRequest, hash string) (Submission, error) {
	packageID, err := s.findOrCreatePackage(ctx, req.Package)
	if err != nil {
		return Submission{}, err
	}

	sub := Submission{PackageID: packageID, ContentHash: hash}
	tag := domain.HashTag(hash)

	existing, err := s.service.FindActiveRequests(ctx, packageID, tag)
	if err != nil {
		return Submission{}, zerr.With(zerr.Wrap(err, "failed to query existing build requests"), "package_id", packageID)
	}
	if len(existing) > 0 {
		s.logger.Info(fmt.Sprintf("found existing request %s for package with the same metadata, using existing package", existing[0].ID))
		sub.RequestID = existing[0].ID
		sub.Reused = true
		return sub, nil
	}

	number, err := s.allocator.NextVersion(ctx, packageID, req.Package.VersionBump)
	if err != nil {
		return Submission{}, err
	}
	sub.VersionNumber = number

	descriptor := domain.BuildDescriptor{
		PackageID:     packageID,
		VersionName:   req.Package.VersionName,
		VersionNumber: number.String(),
	}
	if !req.IsDependency && len(req.Dependencies) > 0 {
		descriptor.Dependencies = make([]domain.DescriptorDependency, len(req.Dependencies))
		for i, id := range req.Dependencies {
			descriptor.Dependencies[i] = domain.DescriptorDependency{SubscriberVersionID: id}
		}
	}

	info, err := EncodeVersionInfo(req.Bundle, descriptor)
	if err != nil {
		return Submission{}, err
	}

	requestID, err := s.service.CreateBuildRequest(ctx, domain.BuildRequestSpec{
		PackageID:      packageID,
		Branch:         req.Package.Branch,
		SkipValidation: req.SkipValidation,
		Tag:            tag,
		VersionInfo:    info,
	})
	if err != nil {
		return Submission{}, zerr.With(zerr.Wrap(err, "failed to create build request"), "package_id", packageID)
	}

	s.logger.Info(fmt.Sprintf("created build request %s for %s version %s", requestID, req.Package.Name, number))
	sub.RequestID = requestID
	return sub, nil
}

// findOrCreatePackage returns the id of the only live package with the
// identity, creating it when there is none.
func (s *Submitter) findOrCreatePackage(ctx context.Context, pkg domain.PackageConfig) (string, error) {
	msg := fmt.Sprintf("checking for existing %s package named %s", pkg.Type, pkg.Name)
	if pkg.Namespace != "" {
		msg += " with namespace " + pkg.Namespace
	}
	s.logger.Info(msg)

	found, err := s.service.FindPackages(ctx, pkg.PackageIdentity)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to query packages"), "package", pkg.Name)
	}

	switch len(found) {
	case 0:
	case 1:
		s.logger.Info(fmt.Sprintf("found %s", found[0].ID))
		return found[0].ID, nil
	default:
		err := zerr.With(zerr.Wrap(domain.ErrAmbiguousIdentity, "find package"), "package", pkg.Name)
		err = zerr.With(err, "package_type", string(pkg.Type))
		err = zerr.With(err, "namespace", pkg.Namespace)
		return "", zerr.With(err, "matches", len(found))
	}

	s.logger.Info("no existing package found, creating the package")
	id, err := s.service.CreatePackage(ctx, domain.PackageSpec{
		Name:        pkg.Name,
		Type:        string(pkg.Type),
		Description: pkg.Description,
		Namespace:   pkg.Namespace,
	})
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create package"), "package", pkg.Name)
	}
	return id, nil
}
