package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crm-engine/internal/domain/product"
	"crm-engine/internal/infrastructure/joblog"
)

// RestockJob tops up products that fell below the stock threshold and logs
// every adjusted product plus a summary line.
type RestockJob struct {
	productService product.ProductService
	jobLog         *joblog.Appender
	threshold      int32
	increment      int32
	logger         *slog.Logger
}

func NewRestockJob(productSvc product.ProductService, jobLog *joblog.Appender, threshold, increment int, logger *slog.Logger) *RestockJob {
	if productSvc == nil || jobLog == nil || logger == nil {
		panic("RestockJob dependencies cannot be nil")
	}
	return &RestockJob{
		productService: productSvc,
		jobLog:         jobLog,
		threshold:      int32(threshold),
		increment:      int32(increment),
		logger:         logger.With("job", "LowStockRestock"),
	}
}

func (j *RestockJob) Name() string { return "LowStockRestock" }

func (j *RestockJob) Run(ctx context.Context) error {
	return j.RunAt(ctx, time.Now())
}

func (j *RestockJob) RunAt(ctx context.Context, now time.Time) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting low stock restock job.",
		slog.Int("threshold", int(j.threshold)), slog.Int("increment", int(j.increment)))

	updated, err := j.productService.RestockLowStock(ctx, j.threshold, j.increment)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to restock low stock products, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run restock job: %w", err)
	}

	timestamp := now.Format(joblog.TimestampLayout)
	for _, prod := range updated {
		line := fmt.Sprintf("%s - Restocked %s to %d", timestamp, prod.Name, prod.Stock)
		if err := j.jobLog.AppendLine(line); err != nil {
			j.logger.ErrorContext(ctx, "Failed to append restock line.",
				slog.Int64("productID", prod.ProductID), slog.Any("error", err))
			return fmt.Errorf("restock job log: %w", err)
		}
	}
	if err := j.jobLog.Appendf("%s - Restocked %d products", timestamp, len(updated)); err != nil {
		j.logger.ErrorContext(ctx, "Failed to append restock summary line.", slog.Any("error", err))
		return fmt.Errorf("restock job log: %w", err)
	}

	j.logger.InfoContext(ctx, "Low stock restock job finished.",
		slog.Int("restocked", len(updated)),
		slog.Duration("duration", time.Since(startTime)))
	return nil
}
