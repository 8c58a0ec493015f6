package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"crm-engine/internal/domain/customer"
	"crm-engine/internal/domain/order"
	"crm-engine/internal/event"
	"crm-engine/internal/infrastructure/joblog"
	"crm-engine/internal/infrastructure/monitoring"

	"github.com/cenkalti/backoff/v4"
)

const webhookRetries = 3

// ReportJob aggregates customer, order and revenue totals into one report
// line. The line is appended to the report log, published as an event and,
// when a webhook is configured, delivered as {"report": "..."}. Webhook
// delivery failure is recorded in the log file but never fails the job.
type ReportJob struct {
	customerService customer.CustomerService
	orderService    order.OrderService
	pub             event.EventPublisher
	jobLog          *joblog.Appender
	webhookURL      string
	client          *http.Client
	retryWait       time.Duration
	logger          *slog.Logger
}

func NewReportJob(
	customerSvc customer.CustomerService,
	orderSvc order.OrderService,
	pub event.EventPublisher,
	jobLog *joblog.Appender,
	webhookURL string,
	webhookTimeout time.Duration,
	logger *slog.Logger,
) *ReportJob {
	if customerSvc == nil || orderSvc == nil || jobLog == nil || logger == nil {
		panic("ReportJob dependencies cannot be nil")
	}
	if pub == nil {
		pub = event.NewNoopPublisher()
	}
	if webhookTimeout <= 0 {
		webhookTimeout = 5 * time.Second
	}
	return &ReportJob{
		customerService: customerSvc,
		orderService:    orderSvc,
		pub:             pub,
		jobLog:          jobLog,
		webhookURL:      webhookURL,
		client:          &http.Client{Timeout: webhookTimeout},
		retryWait:       2 * time.Second,
		logger:          logger.With("job", "WeeklyReport"),
	}
}

func (j *ReportJob) Name() string { return "WeeklyReport" }

func (j *ReportJob) Run(ctx context.Context) error {
	return j.RunAt(ctx, time.Now())
}

func (j *ReportJob) RunAt(ctx context.Context, now time.Time) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting weekly report job.")

	customers, err := j.customerService.CountCustomers(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to count customers, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run report job: %w", err)
	}
	orders, err := j.orderService.CountOrders(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to count orders, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run report job: %w", err)
	}
	revenue, err := j.orderService.TotalRevenue(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to sum revenue, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run report job: %w", err)
	}

	line := fmt.Sprintf("%s - Report: %d customers, %d orders, %s revenue",
		now.Format(joblog.TimestampLayout), customers, orders, revenue.StringFixed(2))
	if err := j.jobLog.AppendLine(line); err != nil {
		j.logger.ErrorContext(ctx, "Failed to append report line.", slog.Any("error", err))
		return fmt.Errorf("report job log: %w", err)
	}

	monitoring.RecordReportTotals(customers, orders, revenue.InexactFloat64())

	reportEvent := event.ReportGeneratedEvent{
		Customers: customers,
		Orders:    orders,
		Revenue:   revenue.StringFixed(2),
		Timestamp: time.Now(),
	}
	if pubErr := j.pub.PublishReportGenerated(ctx, reportEvent); pubErr != nil {
		j.logger.ErrorContext(ctx, "Report generated, but FAILED to publish report event.", slog.Any("error", pubErr))
	}

	if j.webhookURL != "" {
		if err := j.deliver(ctx, line); err != nil {
			j.logger.WarnContext(ctx, "Failed to deliver report to webhook.",
				slog.String("url", j.webhookURL), slog.Any("error", err))
			if logErr := j.jobLog.Appendf("Error sending report: %v", err); logErr != nil {
				j.logger.ErrorContext(ctx, "Failed to append webhook error line.", slog.Any("error", logErr))
			}
		}
	}

	j.logger.InfoContext(ctx, "Weekly report job finished.",
		slog.Int64("customers", customers),
		slog.Int64("orders", orders),
		slog.String("revenue", revenue.StringFixed(2)),
		slog.Duration("duration", time.Since(startTime)))
	return nil
}

// deliver POSTs the report line to the webhook, retrying transport errors
// and server side failures a few times.
func (j *ReportJob) deliver(ctx context.Context, line string) error {
	payload, err := json.Marshal(map[string]string{"report": line})
	if err != nil {
		return err
	}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.webhookURL, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := j.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("webhook returned %s", resp.Status)
		}
		return nil
	}

	boff := backoff.WithMaxRetries(backoff.NewConstantBackOff(j.retryWait), webhookRetries)
	return backoff.Retry(op, backoff.WithContext(boff, ctx))
}
