package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"contrarian-screener/internal/logger"
)

// Job represents a scheduled job
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Scheduler runs background jobs on cron schedules (seconds field included)
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

// New creates a scheduler. Jobs receive ctx, so cancelling it aborts
// in-flight runs.
func New(ctx context.Context) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		ctx:  ctx,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info(s.ctx, "Scheduler started", "component", "scheduler", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	<-done.Done()
	logger.Info(s.ctx, "Scheduler stopped", "component", "scheduler")
}

// AddJob registers a job. Schedule examples:
//   - "0 0 7 * * MON-FRI" - 7 AM weekdays
//   - "@daily"            - midnight
//   - "@every 30m"        - every 30 minutes
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.run(job)
	})
	if err != nil {
		return err
	}

	logger.Info(s.ctx, "Job registered", "component", "scheduler", "schedule", schedule, "job", job.Name())
	return nil
}

// RunNow executes a job immediately, outside its schedule
func (s *Scheduler) RunNow(job Job) error {
	logger.Info(s.ctx, "Running job immediately", "component", "scheduler", "job", job.Name())
	return job.Run(s.ctx)
}

func (s *Scheduler) run(job Job) {
	start := time.Now()
	logger.Debug(s.ctx, "Running job", "component", "scheduler", "job", job.Name())

	if err := job.Run(s.ctx); err != nil {
		logger.ErrorWithErr(s.ctx, "Job failed", err, "component", "scheduler", "job", job.Name())
		return
	}
	logger.Debug(s.ctx, "Job completed", "component", "scheduler", "job", job.Name(), "duration_ms", time.Since(start).Milliseconds())
}
