// Package orchestrator drives a complete package version build: dependencies
// first, then the primary package.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/cask/internal/engine/poller"
	"go.trai.ch/cask/internal/engine/resolver"
	"go.trai.ch/cask/internal/engine/submitter"
	"go.trai.ch/zerr"
)

// RunOptions adjusts a single run. Empty fields keep the project's values.
type RunOptions struct {
	VersionBump    domain.VersionBump
	VersionName    string
	SkipValidation bool
}

// Orchestrator builds a project's package and the source dependencies it needs.
type Orchestrator struct {
	resolver  *resolver.Resolver
	submitter *submitter.Submitter
	poller    *poller.Poller
	bundler   ports.Bundler
	fetcher   ports.SourceFetcher
	service   ports.BuildService
	telemetry ports.Telemetry
	logger    ports.Logger
	poll      poller.Options
}

// Components are the collaborators of an Orchestrator.
type Components struct {
	Resolver  *resolver.Resolver
	Submitter *submitter.Submitter
	Poller    *poller.Poller
	Bundler   ports.Bundler
	Fetcher   ports.SourceFetcher
	Service   ports.BuildService
	Telemetry ports.Telemetry
	Logger    ports.Logger
}

// New creates an Orchestrator polling with the given options.
func New(c Components, poll poller.Options) *Orchestrator {
	return &Orchestrator{
		resolver:  c.Resolver,
		submitter: c.Submitter,
		poller:    c.Poller,
		bundler:   c.Bundler,
		fetcher:   c.Fetcher,
		service:   c.Service,
		telemetry: c.Telemetry,
		logger:    c.Logger,
		poll:      poll,
	}
}

// run holds the state of one Run call.
type run struct {
	*Orchestrator

	project *domain.Project
	pkg     domain.PackageConfig
	opts    RunOptions
}

// Run builds a new version of the project's package and reports it.
func (o *Orchestrator) Run(ctx context.Context, project *domain.Project, opts RunOptions) (*domain.BuildResult, error) {
	if project.Package.Name == "" {
		return nil, zerr.Wrap(domain.ErrMissingPackageName, "run build")
	}

	pkg := project.Package
	if opts.VersionBump != "" {
		pkg.VersionBump = opts.VersionBump
	}
	if opts.VersionName != "" {
		pkg.VersionName = opts.VersionName
	}
	if pkg.VersionName == "" {
		pkg.VersionName = domain.DefaultVersionName
	}
	r := &run{Orchestrator: o, project: project, pkg: pkg, opts: opts}

	deps, err := r.dependencies()
	if err != nil {
		return nil, err
	}
	resolved, err := o.resolver.Resolve(ctx, deps, r)
	if err != nil {
		return nil, zerr.Wrap(err, "resolve dependencies")
	}

	build, err := r.build(ctx, project.Abs(project.SourcePath), submitRequest{
		pkg:          pkg,
		dependencies: resolved,
	})
	if err != nil {
		return nil, err
	}

	result := &domain.BuildResult{
		PackageID:           build.submission.PackageID,
		RequestID:           build.submission.RequestID,
		VersionID:           build.versionID,
		SubscriberVersionID: build.version.SubscriberVersionID,
		VersionNumber:       build.version.Number().String(),
		Dependencies:        build.version.Dependencies,
	}
	if result.Dependencies == nil {
		result.Dependencies = resolved
	}
	if result.Dependencies == nil {
		result.Dependencies = []string{}
	}
	o.logger.Info(fmt.Sprintf("built %s version %s (%s)", pkg.Name, result.VersionNumber, result.SubscriberVersionID))
	return result, nil
}

// BuildSource builds a source dependency as an unlocked package in the
// primary package's namespace and returns its subscriber version id.
func (r *run) BuildSource(ctx context.Context, dep domain.SourceDependency) (string, error) {
	if !dep.IsRemote() {
		dep.LocalPath = r.project.Abs(dep.LocalPath)
	}
	dir, cleanup, err := r.fetcher.Fetch(ctx, dep)
	if err != nil {
		return "", err
	}
	defer cleanup()

	pkg := domain.PackageConfig{
		PackageIdentity: domain.PackageIdentity{
			Name:      r.sourcePackageName(dep),
			Type:      domain.PackageTypeUnlocked,
			Namespace: r.pkg.Namespace,
		},
		VersionName: domain.DefaultVersionName,
		VersionBump: r.pkg.VersionBump,
	}
	build, err := r.build(ctx, dir, submitRequest{pkg: pkg, isDependency: true})
	if err != nil {
		return "", err
	}
	return build.version.SubscriberVersionID, nil
}

func (r *run) sourcePackageName(dep domain.SourceDependency) string {
	if dep.IsRemote() {
		return fmt.Sprintf("%s/%s %s", dep.RepoOwner, dep.RepoName, dep.Subfolder)
	}
	rel := dep.LocalPath
	if p, err := filepath.Rel(r.project.Root, dep.LocalPath); err == nil {
		rel = p
	}
	rel = path.Clean(filepath.ToSlash(rel))
	if r.project.Repo.Name == "" {
		return fmt.Sprintf("%s %s", r.pkg.Name, rel)
	}
	return fmt.Sprintf("%s/%s %s", r.project.Repo.Owner, r.project.Repo.Name, rel)
}

// dependencies returns the declared dependencies followed by one local source
// per folder of the pre-dependency directory.
func (r *run) dependencies() ([]domain.Dependency, error) {
	deps := slices.Clone(r.project.Dependencies)
	if r.project.PreDependencies == "" {
		return deps, nil
	}

	entries, err := os.ReadDir(r.project.Abs(r.project.PreDependencies))
	if errors.Is(err, fs.ErrNotExist) {
		return deps, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "list pre-dependencies"), "path", r.project.PreDependencies)
	}
	// os.ReadDir sorts by name.
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		deps = append(deps, domain.SourceDependency{
			LocalPath: path.Join(filepath.ToSlash(r.project.PreDependencies), e.Name()),
		})
	}
	return deps, nil
}

type submitRequest struct {
	pkg          domain.PackageConfig
	dependencies []string
	isDependency bool
}

type builtPackage struct {
	submission submitter.Submission
	versionID  string
	version    domain.VersionRecord
}

// build bundles dir, submits it and waits for the resulting version.
func (r *run) build(ctx context.Context, dir string, req submitRequest) (_ builtPackage, err error) {
	ctx, vertex := r.telemetry.Record(ctx, "build "+req.pkg.Name)
	defer func() { vertex.Complete(err) }()

	bundle, err := r.bundler.Bundle(ctx, dir, req.pkg.Name)
	if err != nil {
		return builtPackage{}, zerr.With(zerr.Wrap(err, "bundle package"), "package", req.pkg.Name)
	}

	sub, err := r.submitter.Submit(ctx, domain.SubmitRequest{
		Package:        req.pkg,
		Bundle:         bundle,
		Dependencies:   req.dependencies,
		IsDependency:   req.isDependency,
		SkipValidation: r.opts.SkipValidation,
	})
	if err != nil {
		return builtPackage{}, zerr.With(zerr.Wrap(err, "submit package"), "package", req.pkg.Name)
	}
	if sub.Reused {
		vertex.Cached()
		vertex.Log(domain.LogLevelInfo, "reusing build request "+sub.RequestID)
	} else {
		vertex.Log(domain.LogLevelInfo, fmt.Sprintf("submitted build request %s for version %s", sub.RequestID, sub.VersionNumber))
	}

	// A reused request may still be in flight. A finished one returns after one poll.
	versionID, err := r.poller.Await(ctx, sub.RequestID, r.poll)
	if err != nil {
		return builtPackage{}, zerr.With(err, "package", req.pkg.Name)
	}
	version, err := r.service.GetVersion(ctx, versionID)
	if err != nil {
		return builtPackage{}, zerr.With(zerr.Wrap(err, "read package version"), "version_id", versionID)
	}
	vertex.Log(domain.LogLevelInfo, fmt.Sprintf("version %s (%s)", version.Number(), version.SubscriberVersionID))

	return builtPackage{submission: sub, versionID: versionID, version: version}, nil
}
