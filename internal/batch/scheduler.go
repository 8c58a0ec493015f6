package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crm-engine/internal/infrastructure/monitoring"

	"github.com/robfig/cron/v3"
)

const defaultJobTimeout = 5 * time.Minute

// Job is one schedulable unit of maintenance work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler drives the periodic jobs through a single cron instance. Every
// trigger runs under its own timeout context and reports into the job run
// metrics, so individual jobs stay free of scheduling concerns.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		panic("Scheduler logger cannot be nil")
	}
	return &Scheduler{cron: cron.New(), logger: logger}
}

// Register schedules job on a standard five field cron spec.
func (s *Scheduler) Register(spec string, timeout time.Duration, job Job) error {
	if spec == "" {
		return fmt.Errorf("empty cron spec for job %s", job.Name())
	}
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}

	jobID, err := s.cron.AddJob(spec, cron.FuncJob(func() {
		jobLogger := s.logger.With("job_name", job.Name())
		jobLogger.Info("Cron triggered: Running job.")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		startTime := time.Now()
		if runErr := job.Run(ctx); runErr != nil {
			monitoring.RecordJobRun(job.Name(), "error", time.Since(startTime))
			jobLogger.Error("Job finished with error", slog.Any("error", runErr))
		} else {
			monitoring.RecordJobRun(job.Name(), "success", time.Since(startTime))
			jobLogger.Info("Job finished successfully.")
		}
	}))
	if err != nil {
		return fmt.Errorf("failed to schedule job %s with spec %q: %w", job.Name(), spec, err)
	}

	s.logger.Info("Scheduled batch job.", "job_name", job.Name(), "schedule", spec, "job_id", jobID)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Cron scheduler started.")
}

// Stop halts future triggers. The returned context is done once any
// running job has completed.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
