package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"crm-engine/internal/batch"
	"crm-engine/internal/config"
	"crm-engine/internal/domain/customer"
	"crm-engine/internal/event"
	"crm-engine/internal/infrastructure/database/postgres"
	"crm-engine/internal/infrastructure/joblog"
	"crm-engine/internal/infrastructure/logging"
)

// One-shot variant of the customer cleanup job, meant for an external cron
// entry or manual runs. Exits non-zero when the purge fails so cron can
// alert on it. Events and metrics are intentionally not wired here; the
// purge appends the same log line the scheduled job writes.
func main() {
	dryRun := flag.Bool("dry-run", false, "report the number of customers the purge would delete, without deleting")
	days := flag.Int("days", 0, "override the configured inactivity window, in days")
	flag.Parse()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	inactiveDays := cfg.Purge.InactiveDays
	if *days > 0 {
		inactiveDays = *days
	}
	retention := time.Duration(inactiveDays) * 24 * time.Hour

	timeout := cfg.Batch.Cleanup.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	dbPool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	customerRepo := postgres.NewCustomerRepository(dbPool, logger)
	customerService := customer.NewCustomerService(customerRepo, event.NewNoopPublisher(), logger)

	if *dryRun {
		count, err := customerService.CountInactive(ctx, time.Now(), retention)
		if err != nil {
			logger.Error("Failed to count inactive customers", slog.Any("error", err))
			os.Exit(1)
		}
		fmt.Printf("Would delete %d customers inactive for more than %d days.\n", count, inactiveDays)
		return
	}

	job := batch.NewCleanupJob(customerService, joblog.NewAppender(cfg.Batch.Cleanup.LogFile), retention, logger)
	if err := job.RunAt(ctx, time.Now()); err != nil {
		logger.Error("Customer purge failed", slog.Any("error", err))
		os.Exit(1)
	}
}
