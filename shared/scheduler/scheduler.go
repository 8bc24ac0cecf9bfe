// Package scheduler runs periodic maintenance checks on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"video-analytics/shared/monitoring"
)

// Job is a maintenance check such as verifying the document cache or
// pinging the store.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function into a named Job.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (j JobFunc) Name() string                  { return j.JobName }
func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }

// Scheduler manages the execution of maintenance jobs on a schedule.
type Scheduler struct {
	schedule string
	monitor  *monitoring.Monitor
	jobs     []Job
	cron     *cron.Cron
	logger   *zap.Logger
}

// New creates a scheduler for a six-field (with seconds) cron expression.
func New(schedule string, monitor *monitoring.Monitor, logger *zap.Logger, jobs ...Job) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	return &Scheduler{
		schedule: schedule,
		monitor:  monitor,
		jobs:     jobs,
		logger:   logger,
		// Prevent overlapping runs
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
	}
}

// Start runs the jobs on schedule until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Warn("maintenance run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.logger.Info("scheduler started", zap.String("schedule", s.schedule), zap.Int("jobs", len(s.jobs)))
	s.cron.Start()

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

// RunOnce runs every job once, records each result with the monitor and
// returns the joined failures.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()
	var errs []error
	for _, job := range s.jobs {
		err := job.Run(ctx)
		if s.monitor != nil {
			s.monitor.RecordCheck(job.Name(), err)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", job.Name(), err))
		}
	}
	s.logger.Debug("maintenance run finished",
		zap.Int("jobs", len(s.jobs)),
		zap.Int("failed", len(errs)),
		zap.Duration("took", time.Since(start)))
	return errors.Join(errs...)
}
