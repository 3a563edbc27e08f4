package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepEnqueuer queues a generate-all run.
type SweepEnqueuer interface {
	EnqueueSweep(horizonDays int) (string, error)
}

// Config controls the periodic generation trigger.
type Config struct {
	Spec        string
	Location    *time.Location
	HorizonDays int
}

// Scheduler fires generation sweeps on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	sweeps  SweepEnqueuer
	logger  *zap.Logger
	horizon int
	entry   cron.EntryID
}

// New validates the cron spec and registers the sweep trigger. Call Start to begin firing.
func New(cfg Config, sweeps SweepEnqueuer, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	cronLogger := zapCronLogger{logger: logger.Sugar()}
	c := cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	s := &Scheduler{cron: c, sweeps: sweeps, logger: logger, horizon: cfg.HorizonDays}
	entry, err := c.AddFunc(cfg.Spec, s.Trigger)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler spec %q: %w", cfg.Spec, err)
	}
	s.entry = entry
	return s, nil
}

// Trigger enqueues one sweep immediately.
func (s *Scheduler) Trigger() {
	jobID, err := s.sweeps.EnqueueSweep(s.horizon)
	if err != nil {
		s.logger.Error("failed to enqueue scheduled sweep", zap.Error(err))
		return
	}
	s.logger.Info("scheduled sweep enqueued", zap.String("job_id", jobID))
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("shift scheduler started", zap.Time("next_run", s.Next()))
}

// Next returns the next scheduled fire time.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Stop halts the schedule and waits for a running trigger or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.logger.Info("shift scheduler stopped")
}

type zapCronLogger struct {
	logger *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
