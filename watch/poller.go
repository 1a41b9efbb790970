// Package watch drives the live display: a Poller refreshes a solar
// snapshot on a fixed cadence and publishes a report of it to every Sink.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloudeng.io/errors"
	"cloudeng.io/logging/ctxlog"
	"github.com/devskill-org/sunclock/report"
	"github.com/devskill-org/sunclock/solar"
)

// Sink receives every poll report produced by a Poller.
type Sink interface {
	Publish(ctx context.Context, r *report.PollReport) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, r *report.PollReport) error

// Publish implements Sink.
func (f SinkFunc) Publish(ctx context.Context, r *report.PollReport) error {
	return f(ctx, r)
}

// Poller refreshes a snapshot of the solar calculations every interval.
// The snapshot returned by Current is replaced, never modified, so callers
// may keep using a previous one.
type Poller struct {
	interval time.Duration
	sinks    []Sink
	clock    func() time.Time

	mu      sync.RWMutex
	current *solar.Calculations
	last    *report.PollReport
	polls   int64
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock overrides the source of the current time.
func WithClock(clock func() time.Time) Option {
	return func(p *Poller) {
		p.clock = clock
	}
}

// NewPoller creates a poller seeded with calcs. Each refresh keeps the
// coordinates of calcs.
func NewPoller(calcs *solar.Calculations, interval time.Duration, sinks []Sink, opts ...Option) *Poller {
	p := &Poller{
		interval: interval,
		sinks:    sinks,
		current:  calcs,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Current returns the latest snapshot.
func (p *Poller) Current() *solar.Calculations {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Last returns the latest published report, or nil before the first poll.
func (p *Poller) Last() *report.PollReport {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Polls returns how many reports have been published.
func (p *Poller) Polls() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.polls
}

// Once publishes a report for the current snapshot without refreshing it.
func (p *Poller) Once(ctx context.Context) error {
	return p.publish(ctx, p.Current())
}

// Run publishes the current snapshot immediately and then a refreshed one
// every interval until ctx is done. Sink failures are logged and do not
// stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	if p.interval <= 0 {
		return fmt.Errorf("poll interval must be greater than 0, got: %s", p.interval)
	}
	logger := ctxlog.Logger(ctx).With("component", "poller")

	if err := p.publish(ctx, p.Current()); err != nil {
		logger.Warn("failed to publish poll report", "error", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	logger.Debug("started", "interval", p.interval)

	for {
		select {
		case <-ticker.C:
			if ctx.Err() != nil {
				logger.Debug("stopped due to context cancellation")
				return nil
			}
			next := p.Current().Refresh(p.clock())
			if err := p.publish(ctx, next); err != nil {
				logger.Warn("failed to publish poll report", "error", err)
			}
		case <-ctx.Done():
			logger.Debug("stopped due to context cancellation")
			return nil
		}
	}
}

func (p *Poller) publish(ctx context.Context, calcs *solar.Calculations) error {
	r := report.NewPoll(calcs)

	p.mu.Lock()
	p.current = calcs
	p.last = r
	p.polls++
	p.mu.Unlock()

	var errs errors.M
	for _, s := range p.sinks {
		errs.Append(s.Publish(ctx, r))
	}
	return errs.Err()
}
