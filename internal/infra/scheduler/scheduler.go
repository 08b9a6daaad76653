// Package scheduler runs the periodic session sweep.
package scheduler

import (
	"context"
	"fmt"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/observability"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper is the part of the session registry the scheduler drives.
type Sweeper interface {
	Sweep() []string
	Count() int
}

// Scheduler triggers Sweep on a cron schedule ("@every 5m", "*/10 * * * *").
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	metrics *observability.Metrics
	logger  *zap.Logger
}

// New validates schedule and registers the sweep job. The job starts with Run.
func New(schedule string, sweeper Sweeper, metrics *observability.Metrics, logger *zap.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	s := &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		metrics: metrics,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.SweepOnce() }); err != nil {
		return nil, fmt.Errorf("register sweep job: %w", err)
	}
	return s, nil
}

// SweepOnce evicts expired sessions now and updates the session metrics.
func (s *Scheduler) SweepOnce() []string {
	removed := s.sweeper.Sweep()
	active := s.sweeper.Count()
	if s.metrics != nil {
		s.metrics.AddEvicted(len(removed))
		s.metrics.SetActiveSessions(active)
	}
	if len(removed) > 0 {
		s.logger.Info("session sweep",
			zap.Int("removed", len(removed)),
			zap.Int("active", active),
		)
	}
	return removed
}

// Run starts the cron loop and blocks until ctx is done, then waits for a
// running sweep to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info("session sweep scheduler started")
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("session sweep scheduler stopped")
	return nil
}
