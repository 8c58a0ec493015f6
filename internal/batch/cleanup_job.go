package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crm-engine/internal/domain/customer"
	"crm-engine/internal/infrastructure/joblog"
)

// CleanupJob deletes customers with no recent order and records the outcome
// in the cleanup log file. The purge itself, including the purge event and
// metrics, lives in the customer service; the job owns scheduling concerns
// and the log line.
type CleanupJob struct {
	customerService customer.CustomerService
	jobLog          *joblog.Appender
	retention       time.Duration
	logger          *slog.Logger
}

func NewCleanupJob(customerSvc customer.CustomerService, jobLog *joblog.Appender, retention time.Duration, logger *slog.Logger) *CleanupJob {
	if customerSvc == nil || jobLog == nil || logger == nil {
		panic("CleanupJob dependencies cannot be nil")
	}
	return &CleanupJob{
		customerService: customerSvc,
		jobLog:          jobLog,
		retention:       retention,
		logger:          logger.With("job", "CustomerCleanup"),
	}
}

func (j *CleanupJob) Name() string { return "CustomerCleanup" }

func (j *CleanupJob) Run(ctx context.Context) error {
	return j.RunAt(ctx, time.Now())
}

// RunAt purges customers inactive relative to now. The one-shot purge
// command calls it directly with its own reference time.
func (j *CleanupJob) RunAt(ctx context.Context, now time.Time) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting inactive customer cleanup job.")

	deleted, err := j.customerService.PurgeInactive(ctx, now, j.retention)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to purge inactive customers, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run cleanup job: %w", err)
	}

	line := fmt.Sprintf("%s - Deleted customers: %d", now.Format(joblog.TimestampLayout), deleted)
	if err := j.jobLog.AppendLine(line); err != nil {
		j.logger.ErrorContext(ctx, "Purge succeeded but appending the cleanup log failed.", slog.Any("error", err))
		return fmt.Errorf("cleanup job log: %w", err)
	}

	j.logger.InfoContext(ctx, "Inactive customer cleanup job finished.",
		slog.Int64("deleted", deleted),
		slog.Duration("duration", time.Since(startTime)))
	return nil
}
