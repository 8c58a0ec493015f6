package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"crm-engine/internal/config"
	"crm-engine/internal/domain/customer"
	"crm-engine/internal/domain/product"
	"crm-engine/internal/event"
	"crm-engine/internal/infrastructure/database/postgres"
	"crm-engine/internal/infrastructure/logging"
	"crm-engine/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

type seedCustomer struct {
	name  string
	email string
	phone string
}

type seedProduct struct {
	name  string
	price string
	stock int32
}

var (
	seedCustomers = []seedCustomer{
		{name: "Daniel Abdul", email: "dan_abdul@gmail.com", phone: "+2349023768712"},
	}
	seedProducts = []seedProduct{
		{name: "iPhone", price: "450.00", stock: 50},
		{name: "Tablet", price: "750.50", stock: 30},
	}
)

// Seeds the database with a small fixed data set for local development.
// Customers that already exist are skipped, so the command can be re-run
// after a partial failure.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbPool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	customerService := customer.NewCustomerService(postgres.NewCustomerRepository(dbPool, logger), event.NewNoopPublisher(), logger)
	productService := product.NewProductService(postgres.NewProductRepository(dbPool, logger), logger)

	for _, c := range seedCustomers {
		if _, err := customerService.CreateNewCustomer(ctx, c.name, c.email, c.phone); err != nil {
			if errors.Is(err, apperrors.ErrEmailTaken) {
				logger.Info("Customer already seeded, skipping.", "email", c.email)
				continue
			}
			logger.Error("Failed to seed customer", "email", c.email, slog.Any("error", err))
			os.Exit(1)
		}
	}

	for _, p := range seedProducts {
		if _, err := productService.CreateProduct(ctx, p.name, "", decimal.RequireFromString(p.price), p.stock); err != nil {
			logger.Error("Failed to seed product", "name", p.name, slog.Any("error", err))
			os.Exit(1)
		}
	}

	fmt.Println("Database seeded successfully!")
}
