package baseline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ManifestSource supplies the manifest to enforce at the start of each run.
type ManifestSource interface {
	Current() *Manifest
}

type staticSource struct{ m *Manifest }

func (s staticSource) Current() *Manifest { return s.m }

// Static returns a ManifestSource that always yields m.
func Static(m *Manifest) ManifestSource { return staticSource{m: m} }

// Scheduler runs an Enforcer on a cron schedule. Runs never overlap; a tick
// that fires while the previous run is still going is skipped.
type Scheduler struct {
	enforcer *Enforcer
	source   ManifestSource
	schedule string
	onRun    func(Report, error)

	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
	entry   cron.EntryID
	stop    chan struct{} // closed by Stop
	watched chan struct{} // closed when the ctx watcher exits
}

// NewScheduler creates a scheduler for the standard cron expression
// schedule. onRun, if not nil, is called after every run.
func NewScheduler(e *Enforcer, source ManifestSource, schedule string, onRun func(Report, error)) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return &Scheduler{
		enforcer: e,
		source:   source,
		schedule: schedule,
		onRun:    onRun,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   slog.Default().With("component", "baseline.scheduler"),
	}, nil
}

// Start schedules enforcement and returns immediately. The scheduler stops
// when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	id, err := s.cron.AddFunc(s.schedule, func() { s.RunNow(ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule baseline run: %w", err)
	}

	s.entry = id
	s.stop = make(chan struct{})
	s.watched = make(chan struct{})
	s.cron.Start()
	s.running = true
	s.logger.Info("baseline scheduler started", "schedule", s.schedule)

	go func(stop, watched chan struct{}) {
		defer close(watched)
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stop:
		}
	}(s.stop, s.watched)

	return nil
}

// RunNow enforces the current manifest immediately.
func (s *Scheduler) RunNow(ctx context.Context) (Report, error) {
	m := s.source.Current()
	if m == nil {
		err := fmt.Errorf("no manifest loaded")
		s.logger.Error("baseline run skipped", "error", err)
		if s.onRun != nil {
			s.onRun(Report{}, err)
		}
		return Report{}, err
	}

	report, err := s.enforcer.Apply(ctx, m)
	if err != nil {
		s.logger.Error("baseline run aborted", "error", err)
	}
	if s.onRun != nil {
		s.onRun(report, err)
	}
	return report, err
}

// Stop stops the scheduler and waits for a running enforcement to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.cron.Remove(s.entry)
		close(s.stop)
		s.running = false
		s.logger.Info("baseline scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the time of the next scheduled run, or nil when the
// scheduler is not running.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
