// Package poller drives a submitted build request to a terminal state.
package poller

import (
	"context"
	"fmt"
	"time"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
)

// Defaults applied to zero Options fields.
const (
	DefaultInterval    = 10 * time.Second
	DefaultMaxInterval = time.Minute
	DefaultTimeout     = 30 * time.Minute

	// backoffEvery is the number of polls after which the interval grows by one step.
	backoffEvery = 3
)

// Options bounds the polling of a single request.
type Options struct {
	// Interval is the first wait between polls and the step the wait grows by.
	Interval time.Duration
	// MaxInterval caps the wait between polls.
	MaxInterval time.Duration
	// Timeout is how long a request may stay non-terminal.
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	switch {
	case o.MaxInterval <= 0:
		o.MaxInterval = max(o.Interval, DefaultMaxInterval)
	case o.MaxInterval < o.Interval:
		o.MaxInterval = o.Interval
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Poller queries build request status until the request succeeds or fails.
type Poller struct {
	service ports.BuildService
	logger  ports.Logger
}

// New creates a Poller.
func New(service ports.BuildService, logger ports.Logger) *Poller {
	return &Poller{service: service, logger: logger}
}

// pollState is owned by one Await call.
type pollState struct {
	requestID string
	opts      Options
	interval  time.Duration
	count     int
	deadline  time.Time
}

func newPollState(requestID string, opts Options) *pollState {
	return &pollState{
		requestID: requestID,
		opts:      opts,
		interval:  opts.Interval,
		deadline:  time.Now().Add(opts.Timeout),
	}
}

// next records a poll and returns the wait before the following one.
func (s *pollState) next() time.Duration {
	s.count++
	if s.count%backoffEvery == 0 {
		s.interval = min(s.interval+s.opts.Interval, s.opts.MaxInterval)
	}
	return s.interval
}

// Await polls the request until it reaches Success or Error and returns the
// id of the package version it produced. The first status query is made
// immediately. An Error status fails with a *domain.BuildFailure carrying
// every message the service recorded; it is never retried.
func (p *Poller) Await(ctx context.Context, requestID string, opts Options) (string, error) {
	state := newPollState(requestID, opts.withDefaults())

	for {
		req, err := p.service.GetBuildRequest(ctx, requestID)
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to query build request"), "request_id", requestID)
		}

		switch req.Status {
		case domain.StatusSuccess:
			p.logger.Info(fmt.Sprintf("[Success]: build request %s produced version %s", requestID, req.VersionID))
			if req.VersionID == "" {
				return "", zerr.With(zerr.Wrap(domain.ErrHubResponseInvalid, "successful request has no version id"), "request_id", requestID)
			}
			return req.VersionID, nil
		case domain.StatusError:
			return "", p.failure(ctx, requestID)
		case domain.StatusQueued, domain.StatusInProgress:
			p.logger.Info(fmt.Sprintf("[%s]: checking status of build request %s", req.Status, requestID))
		default:
			err := zerr.With(zerr.Wrap(domain.ErrUnknownStatus, "poll build request"), "status", string(req.Status))
			return "", zerr.With(err, "request_id", requestID)
		}

		wait := state.next()
		if !time.Now().Add(wait).Before(state.deadline) {
			err := zerr.With(zerr.Wrap(domain.ErrPollTimeout, "build request did not finish"), "request_id", requestID)
			return "", zerr.With(err, "timeout", state.opts.Timeout.String())
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", zerr.With(zerr.Wrap(ctx.Err(), "polling cancelled"), "request_id", requestID)
		case <-timer.C:
		}
	}
}

// failure collects the error messages of a failed request.
func (p *Poller) failure(ctx context.Context, requestID string) error {
	messages, err := p.service.GetBuildRequestErrors(ctx, requestID)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to query build request errors"), "request_id", requestID)
	}

	p.logger.Warn(fmt.Sprintf("[Error]: build request %s failed with %d error(s)", requestID, len(messages)))
	for _, msg := range messages {
		p.logger.Warn(msg)
	}
	return &domain.BuildFailure{RequestID: requestID, Messages: messages}
}
