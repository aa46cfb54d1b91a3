package usecase

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"TweetSentiment/internal/ports"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, req Request) (Report, error)
}

// Scheduler wires the interval driver with the pipeline use case so a
// keyword can be tracked over time.
type Scheduler struct {
	driver ports.Scheduler
	runner Runner
	logger *zap.Logger
}

// NewScheduler returns a helper to start and stop recurring runs.
func NewScheduler(driver ports.Scheduler, runner Runner, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{driver: driver, runner: runner, logger: logger}
}

// Start registers req with the driver. Every tick forces a fresh fetch;
// a failed run is logged and the next tick tries again.
func (s *Scheduler) Start(ctx context.Context, req Request) error {
	if s.driver == nil || s.runner == nil {
		return eris.New("scheduler is not configured")
	}
	req.ForceRefetch = true
	req.Resume = false

	job := func(trigger time.Time) {
		rep, err := s.runner.Run(ctx, req)
		if err != nil {
			s.logger.Warn("scheduled run failed", zap.Time("trigger", trigger), zap.Error(err))
			return
		}
		s.logger.Info("scheduled run finished", zap.Time("trigger", trigger), zap.String("run_id", rep.RunID))
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
