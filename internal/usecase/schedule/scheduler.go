// Package schedule owns the recurring trigger for publication cycles: the
// interval timer, the initial-delay run, and the single-flight guard that
// keeps at most one cycle in flight.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultInterval is the default spacing between publication cycles.
	DefaultInterval = time.Minute
	// DefaultInitialDelay postpones the first cycle so the surrounding
	// process can finish booting.
	DefaultInitialDelay = 5 * time.Second
)

// Scheduler triggers a cycle function on a fixed interval, with one delayed
// initial run. Overlapping triggers are dropped: if a cycle is still
// running when the next trigger fires, that trigger is a complete no-op.
//
// The guard is an atomic compare-and-set rather than a cron job wrapper
// because the initial delayed run fires outside the cron chain and must
// share the same at-most-one guarantee.
type Scheduler struct {
	run          func(ctx context.Context)
	interval     time.Duration
	initialDelay time.Duration
	onSkip       func()

	mu      sync.Mutex
	cron    *cron.Cron
	initial *time.Timer

	running atomic.Bool
	ticks   atomic.Int64
	runs    atomic.Int64
	skips   atomic.Int64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInitialDelay overrides the delay before the first run.
func WithInitialDelay(d time.Duration) Option {
	return func(s *Scheduler) { s.initialDelay = d }
}

// WithSkipHook registers a callback invoked whenever a trigger is dropped
// by the single-flight guard (used for metrics).
func WithSkipHook(fn func()) Option {
	return func(s *Scheduler) { s.onSkip = fn }
}

// New creates a Scheduler that invokes run every interval. It does not
// start anything until Start is called.
func New(interval time.Duration, run func(ctx context.Context), opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{
		run:          run,
		interval:     interval,
		initialDelay: DefaultInitialDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start arms the initial-delay run and the recurring trigger. Calling
// Start while the scheduler is already armed does nothing.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), s.trigger); err != nil {
		return fmt.Errorf("schedule publish cycle: %w", err)
	}

	s.initial = time.AfterFunc(s.initialDelay, s.trigger)
	c.Start()
	s.cron = c

	slog.Info("publish scheduler started",
		slog.Duration("interval", s.interval),
		slog.Duration("initial_delay", s.initialDelay))
	return nil
}

// Stop cancels the recurring trigger and the pending initial run. A cycle
// already in flight is not interrupted. Stop is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}
	if s.initial != nil {
		s.initial.Stop()
		s.initial = nil
	}
	s.cron.Stop()
	s.cron = nil

	slog.Info("publish scheduler stopped")
}

// trigger is invoked by both the initial timer and the cron entry. The CAS
// on running is the single-flight guard: a trigger arriving while a cycle
// is in flight is dropped entirely, never queued.
func (s *Scheduler) trigger() {
	s.ticks.Add(1)

	if !s.running.CompareAndSwap(false, true) {
		s.skips.Add(1)
		if s.onSkip != nil {
			s.onSkip()
		}
		slog.Info("previous publish cycle still running, skipping trigger")
		return
	}
	defer s.running.Store(false)

	s.runs.Add(1)
	s.run(context.Background())
}

// Ticks returns how many triggers have fired since creation.
func (s *Scheduler) Ticks() int64 { return s.ticks.Load() }

// Runs returns how many triggers were admitted through the guard.
func (s *Scheduler) Runs() int64 { return s.runs.Load() }

// Skips returns how many triggers were dropped by the guard.
func (s *Scheduler) Skips() int64 { return s.skips.Load() }
