package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crm-engine/internal/domain/order"
	"crm-engine/internal/infrastructure/joblog"
	"crm-engine/internal/infrastructure/monitoring"
)

// ReminderJob writes one reminder line per pending order placed within the
// lookback window. A fetch failure is appended to the log file as well so
// operators reading only the file see the gap.
type ReminderJob struct {
	orderService order.OrderService
	jobLog       *joblog.Appender
	lookback     time.Duration
	logger       *slog.Logger
}

func NewReminderJob(orderSvc order.OrderService, jobLog *joblog.Appender, lookbackDays int, logger *slog.Logger) *ReminderJob {
	if orderSvc == nil || jobLog == nil || logger == nil {
		panic("ReminderJob dependencies cannot be nil")
	}
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	return &ReminderJob{
		orderService: orderSvc,
		jobLog:       jobLog,
		lookback:     time.Duration(lookbackDays) * 24 * time.Hour,
		logger:       logger.With("job", "OrderReminders"),
	}
}

func (j *ReminderJob) Name() string { return "OrderReminders" }

func (j *ReminderJob) Run(ctx context.Context) error {
	return j.RunAt(ctx, time.Now())
}

func (j *ReminderJob) RunAt(ctx context.Context, now time.Time) error {
	startTime := time.Now()
	since := now.Add(-j.lookback)
	j.logger.InfoContext(ctx, "Starting order reminder job.", slog.Time("since", since))

	timestamp := now.Format(joblog.TimestampLayout)
	pending, err := j.orderService.ListPendingSince(ctx, since)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to fetch pending orders, aborting job.", slog.Any("error", err))
		if logErr := j.jobLog.Appendf("%s - Error fetching orders: %v", timestamp, err); logErr != nil {
			j.logger.ErrorContext(ctx, "Failed to append reminder error line.", slog.Any("error", logErr))
		}
		return fmt.Errorf("cannot run reminder job: %w", err)
	}

	for _, pend := range pending {
		line := fmt.Sprintf("%s - Reminder: Order %d for customer %s", timestamp, pend.OrderID, pend.CustomerEmail)
		if err := j.jobLog.AppendLine(line); err != nil {
			j.logger.ErrorContext(ctx, "Failed to append reminder line.",
				slog.Int64("orderID", pend.OrderID), slog.Any("error", err))
			return fmt.Errorf("reminder job log: %w", err)
		}
		monitoring.RecordReminderLogged()
	}

	j.logger.InfoContext(ctx, "Order reminders processed.",
		slog.Int("count", len(pending)),
		slog.Duration("duration", time.Since(startTime)))
	return nil
}
