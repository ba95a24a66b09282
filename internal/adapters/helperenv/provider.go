// Package helperenv manages the helper environment used to resolve namespaced dependencies.
package helperenv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.EnvironmentProvider = (*Provider)(nil)

// Provider hands out a live helper environment, creating it when the stored
// lease is absent and recreating it when the lease has expired.
type Provider struct {
	service ports.EnvironmentService
	store   ports.LeaseStore
	logger  ports.Logger
	name    string
	// pinnedID skips the lease lifecycle entirely.
	pinnedID string
	now      func() time.Time

	mu      sync.Mutex
	current *domain.EnvironmentRecord
}

// Option configures a Provider.
type Option func(*Provider)

// WithPinnedID makes Acquire always return the environment with this id.
func WithPinnedID(id string) Option {
	return func(p *Provider) { p.pinnedID = id }
}

// WithClock sets the time source used to check lease expiry.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// NewProvider creates a Provider for the environment called name.
func NewProvider(service ports.EnvironmentService, store ports.LeaseStore, logger ports.Logger, name string, opts ...Option) *Provider {
	p := &Provider{
		service: service,
		store:   store,
		logger:  logger,
		name:    name,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire returns a live environment. Concurrent and repeated calls share
// one environment for as long as it stays live.
func (p *Provider) Acquire(ctx context.Context) (domain.EnvironmentRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pinnedID != "" {
		return domain.EnvironmentRecord{ID: p.pinnedID, Name: p.name}, nil
	}

	now := p.now()
	if p.current.State(now) == domain.EnvironmentLive {
		return *p.current, nil
	}

	stored, err := p.store.Get(p.name)
	if err != nil {
		p.logger.Warn(fmt.Sprintf("ignoring unreadable lease for %s: %v", p.name, err))
		stored = nil
	}

	switch stored.State(now) {
	case domain.EnvironmentLive:
		p.logger.Info(fmt.Sprintf("reusing helper environment %s", stored.ID))
		p.current = stored
		return *stored, nil
	case domain.EnvironmentExpired:
		p.logger.Info(fmt.Sprintf("helper environment %s expired, creating a new one", stored.ID))
	case domain.EnvironmentAbsent:
		p.logger.Info(fmt.Sprintf("creating helper environment %s", p.name))
	}

	created, err := p.service.CreateEnvironment(ctx, p.name)
	if err != nil {
		return domain.EnvironmentRecord{}, zerr.With(zerr.Wrap(domain.ErrEnvironmentUnavailable, err.Error()), "environment", p.name)
	}
	if created.ID == "" {
		return domain.EnvironmentRecord{}, zerr.With(zerr.Wrap(domain.ErrEnvironmentUnavailable, "service returned no id"), "environment", p.name)
	}
	if created.Name == "" {
		created.Name = p.name
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}

	if err := p.store.Put(created); err != nil {
		p.logger.Warn(fmt.Sprintf("failed to store lease for %s: %v", created.ID, err))
	}

	p.current = &created
	return created, nil
}
