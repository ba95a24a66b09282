// Package resolver turns a declared dependency tree into an ordered list of
// subscriber version ids.
package resolver

import (
	"context"
	"fmt"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
)

// SourceBuilder builds a source dependency into a package version.
type SourceBuilder interface {
	// BuildSource returns the subscriber version id of the built dependency.
	BuildSource(ctx context.Context, dep domain.SourceDependency) (string, error)
}

// Resolver resolves dependency trees.
type Resolver struct {
	environments ports.EnvironmentProvider
	service      ports.EnvironmentService
	logger       ports.Logger
}

// New creates a Resolver. Namespaced dependencies are looked up through a
// helper environment obtained from environments, only when there are any.
func New(environments ports.EnvironmentProvider, service ports.EnvironmentService, logger ports.Logger) *Resolver {
	return &Resolver{
		environments: environments,
		service:      service,
		logger:       logger,
	}
}

// Resolve returns one subscriber version id per buildable node of the tree.
// Every node comes after all of its transitive dependencies and siblings keep
// their declared order. Post-deployment sources are skipped at any depth.
// Source dependencies are built through builder, one at a time.
func (r *Resolver) Resolve(ctx context.Context, nodes []domain.Dependency, builder SourceBuilder) ([]string, error) {
	flat, err := domain.Flatten(nodes)
	if err != nil {
		return nil, err
	}

	namespaced, err := r.resolveNamespaced(ctx, flat)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(flat))
	for i, node := range flat {
		switch dep := node.(type) {
		case domain.ResolvedDependency:
			r.logger.Info(fmt.Sprintf("adding dependency %s", dep))
			ids = append(ids, dep.VersionID)
		case domain.NamespacedDependency:
			id := namespaced[i]
			r.logger.Info(fmt.Sprintf("adding dependency %s with id %s", dep, id))
			ids = append(ids, id)
		case domain.SourceDependency:
			id, err := builder.BuildSource(ctx, dep)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to build source dependency"), "dependency", dep.String())
			}
			r.logger.Info(fmt.Sprintf("adding dependency %s with id %s", dep, id))
			ids = append(ids, id)
		default:
			return nil, zerr.With(zerr.Wrap(domain.ErrUnclassifiableDependency, "resolve dependency"), "dependency", fmt.Sprintf("%#v", node))
		}
	}
	return ids, nil
}

// resolveNamespaced looks up every namespaced dependency of flat in a single
// call and returns the ids keyed by position in flat.
func (r *Resolver) resolveNamespaced(ctx context.Context, flat []domain.Dependency) (map[int]string, error) {
	var (
		positions []int
		deps      []domain.NamespacedDependency
	)
	for i, node := range flat {
		if dep, ok := node.(domain.NamespacedDependency); ok {
			positions = append(positions, i)
			deps = append(deps, dep)
		}
	}
	if len(deps) == 0 {
		return nil, nil
	}

	env, err := r.environments.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Info(fmt.Sprintf("resolving %d namespaced dependencies in helper environment %s", len(deps), env.ID))

	ids, err := r.service.ResolveNamespaced(ctx, env.ID, deps)
	if err != nil {
		return nil, zerr.With(err, "environment_id", env.ID)
	}
	if len(ids) != len(deps) {
		err := zerr.With(zerr.Wrap(domain.ErrNamespaceResolutionFailed, "unexpected number of version ids"), "expected", len(deps))
		return nil, zerr.With(err, "got", len(ids))
	}

	out := make(map[int]string, len(ids))
	for j, pos := range positions {
		if ids[j] == "" {
			err := zerr.With(zerr.Wrap(domain.ErrNamespaceResolutionFailed, "no version id"), "namespace", deps[j].Namespace)
			return nil, zerr.With(err, "version", deps[j].Version)
		}
		out[pos] = ids[j]
	}
	return out, nil
}
