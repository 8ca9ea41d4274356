// Package scheduler drives periodic synchronization runs with a plain ticker
// loop. Which run is due is a pure function of the last-run timestamps and
// the configured intervals; runs never overlap.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"docsync/internal/domain"
)

// Syncer is the orchestrator surface the loop drives.
type Syncer interface {
	FullSync(ctx context.Context, sources []string) *domain.SyncResult
	IncrementalSync(ctx context.Context) *domain.SyncResult
	PruneHistory() int
	SaveState(ctx context.Context) error
}

type runKind int

const (
	runNone runKind = iota
	runFull
	runIncremental
)

type Config struct {
	Sources             []string
	CheckInterval       time.Duration
	FullInterval        time.Duration
	IncrementalInterval time.Duration
}

type Scheduler struct {
	syncer Syncer
	cfg    Config
	logger *slog.Logger

	lastFull        time.Time
	lastIncremental time.Time
}

// NewScheduler builds the run loop. Non-zero lastFull/lastIncremental seed
// the planner from persisted state so a restart does not force a full sync.
func NewScheduler(syncer Syncer, cfg Config, lastFull, lastIncremental time.Time, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:          syncer,
		cfg:             cfg,
		logger:          logger.With("component", "scheduler"),
		lastFull:        lastFull,
		lastIncremental: lastIncremental,
	}
}

// Start runs until the context is canceled. The first due run fires
// immediately, then the loop wakes every CheckInterval to re-evaluate.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started",
		"check_interval", s.cfg.CheckInterval,
		"full_interval", s.cfg.FullInterval,
		"incremental_interval", s.cfg.IncrementalInterval,
	)

	s.runDue(ctx)

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// nextRun decides which run, if any, is due at the given time. A full sync
// that is due preempts an incremental one.
func (s *Scheduler) nextRun(now time.Time) runKind {
	if s.lastFull.IsZero() || now.Sub(s.lastFull) >= s.cfg.FullInterval {
		return runFull
	}
	if s.lastIncremental.IsZero() || now.Sub(s.lastIncremental) >= s.cfg.IncrementalInterval {
		return runIncremental
	}
	return runNone
}

func (s *Scheduler) runDue(ctx context.Context) {
	now := time.Now()

	switch s.nextRun(now) {
	case runFull:
		result := s.syncer.FullSync(ctx, s.cfg.Sources)
		// A run truncated by shutdown does not count; it is re-attempted on
		// the next wake-up or after restart.
		if ctx.Err() == nil {
			s.lastFull = now
			s.lastIncremental = now // a full run covers the incremental due set
		}
		s.afterRun(ctx, result)
	case runIncremental:
		result := s.syncer.IncrementalSync(ctx)
		if ctx.Err() == nil {
			s.lastIncremental = now
		}
		s.afterRun(ctx, result)
	case runNone:
	}
}

func (s *Scheduler) afterRun(ctx context.Context, result *domain.SyncResult) {
	if !result.Success {
		s.logger.Error("sync run finished with errors",
			"operation_id", result.OperationID,
			"errors", len(result.Errors),
		)
	}

	s.syncer.PruneHistory()

	if err := s.syncer.SaveState(ctx); err != nil {
		s.logger.Warn("failed to save state after run", "error", err)
	}
}
