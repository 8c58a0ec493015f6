package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"crm-engine/internal/infrastructure/joblog"

	"github.com/cenkalti/backoff/v4"
)

const heartbeatProbeRetries = 3

// HeartbeatJob appends one liveness line per trigger. When an endpoint is
// configured the line also carries the health probe outcome; a failing probe
// is recorded in the line rather than failing the job, so the heartbeat log
// stays an unbroken record of scheduler health.
type HeartbeatJob struct {
	endpoint  string
	jobLog    *joblog.Appender
	client    *http.Client
	retryWait time.Duration
	logger    *slog.Logger
}

func NewHeartbeatJob(endpoint string, jobLog *joblog.Appender, logger *slog.Logger) *HeartbeatJob {
	if jobLog == nil || logger == nil {
		panic("HeartbeatJob dependencies cannot be nil")
	}
	return &HeartbeatJob{
		endpoint:  endpoint,
		jobLog:    jobLog,
		client:    &http.Client{Timeout: 10 * time.Second},
		retryWait: 2 * time.Second,
		logger:    logger.With("job", "Heartbeat"),
	}
}

func (j *HeartbeatJob) Name() string { return "Heartbeat" }

func (j *HeartbeatJob) Run(ctx context.Context) error {
	return j.RunAt(ctx, time.Now())
}

func (j *HeartbeatJob) RunAt(ctx context.Context, now time.Time) error {
	message := now.Format(joblog.HeartbeatLayout) + " CRM is alive"

	if j.endpoint != "" {
		status, err := j.probe(ctx)
		if err != nil {
			j.logger.WarnContext(ctx, "Health probe failed.",
				slog.String("endpoint", j.endpoint), slog.Any("error", err))
			message += fmt.Sprintf(" | health error: %v", err)
		} else {
			message += " | health: " + status
		}
	}

	if err := j.jobLog.AppendLine(message); err != nil {
		j.logger.ErrorContext(ctx, "Failed to append heartbeat line.", slog.Any("error", err))
		return fmt.Errorf("heartbeat log: %w", err)
	}

	j.logger.InfoContext(ctx, message)
	return nil
}

// probe issues a GET against the health endpoint, retrying transport
// failures a few times before reporting the probe as failed.
func (j *HeartbeatJob) probe(ctx context.Context) (string, error) {
	var status string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := j.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		status = resp.Status
		return nil
	}

	boff := backoff.WithMaxRetries(backoff.NewConstantBackOff(j.retryWait), heartbeatProbeRetries)
	if err := backoff.Retry(op, backoff.WithContext(boff, ctx)); err != nil {
		return "", err
	}
	return status, nil
}
