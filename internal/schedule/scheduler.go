// Package schedule runs recurring crawls on a cron interval.
package schedule

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/newsflowai/newsflow/internal/crawl"
	"github.com/newsflowai/newsflow/internal/logger"
)

// Snapshot is the immutable configuration one tick runs with. Reload swaps
// the whole snapshot; ticks never see a half-updated state.
type Snapshot struct {
	Keywords     []string
	WindowHours  int
	RequireTitle bool
	RequireImage bool
}

// Runner executes one crawl.
type Runner interface {
	Run(ctx context.Context, req crawl.Request) crawl.Report
}

// Scheduler triggers crawls on a fixed cron spec.
type Scheduler struct {
	spec     string
	runner   Runner
	log      logger.Interface
	cron     *cron.Cron
	snapshot atomic.Pointer[Snapshot]
}

// New creates a scheduler. spec is a cron expression or an @every duration.
func New(spec string, runner Runner, snapshot Snapshot, log logger.Interface) *Scheduler {
	s := &Scheduler{
		spec:   spec,
		runner: runner,
		log:    log,
		cron:   cron.New(),
	}
	s.snapshot.Store(&snapshot)

	return s
}

// Start registers the crawl entry and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
		return fmt.Errorf("schedule crawl with spec %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.log.Info("scheduler started", "spec", s.spec)

	return nil
}

// Stop halts the cron loop and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// Reload atomically replaces the snapshot used by future ticks.
func (s *Scheduler) Reload(snapshot Snapshot) {
	s.snapshot.Store(&snapshot)
	s.log.Info("scheduler snapshot reloaded",
		"keywords", len(snapshot.Keywords), "window_hours", snapshot.WindowHours)
}

func (s *Scheduler) tick() {
	snapshot := s.snapshot.Load()
	if len(snapshot.Keywords) == 0 {
		s.log.Debug("scheduled crawl skipped, no keywords configured")
		return
	}

	report := s.runner.Run(context.Background(), crawl.Request{
		Keywords:     snapshot.Keywords,
		WindowHours:  snapshot.WindowHours,
		RequireTitle: snapshot.RequireTitle,
		RequireImage: snapshot.RequireImage,
	})

	collected := 0
	for _, summaries := range report.Collected {
		collected += len(summaries)
	}

	s.log.Info("scheduled crawl finished", "run_id", report.RunID, "collected", collected)
}
