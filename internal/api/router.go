package api

import (
	"log/slog"
	"net/http"
	"time"

	"crm-engine/internal/api/handler"
	mw "crm-engine/internal/api/middleware"
	"crm-engine/internal/config"
	"crm-engine/internal/domain/customer"
	"crm-engine/internal/domain/order"
	"crm-engine/internal/domain/product"

	_ "crm-engine/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func SetupRouter(customerService customer.CustomerService, productService product.ProductService, orderService order.OrderService, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupCustomerRoutes(router, cfg, customerService, logger)
	setupProductRoutes(router, cfg, productService, logger)
	setupOrderRoutes(router, orderService, cfg, logger)
	setupMaintenanceRoutes(router, cfg, customerService, productService, orderService, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupCustomerRoutes(r chi.Router, cfg *config.Config, svc customer.CustomerService, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)
	authHandler := handler.NewAuthHandler(cfg.Server.Auth, logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateCustomer)
		r.Post("/bulk", h.BulkCreateCustomers)
		r.Get("/", h.ListCustomers)
		r.Get("/by-email", h.GetCustomerByEmail)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Put("/", h.UpdateCustomer)
			r.Delete("/", h.DeleteCustomer)
		})
	})
}

func setupProductRoutes(r chi.Router, cfg *config.Config, svc product.ProductService, logger *slog.Logger) {
	h := handler.NewProductHandler(svc, logger)

	r.Route("/products", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateProduct)
		r.Get("/", h.ListProducts)
		r.Get("/{productID}", h.GetProduct)
	})
}

func setupOrderRoutes(router *chi.Mux, orderService order.OrderService, cfg *config.Config, logger *slog.Logger) {
	orderHandler := handler.NewOrderHandler(orderService, logger)

	router.Route("/orders", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", orderHandler.CreateOrder)
		r.Get("/", orderHandler.ListOrders)
		r.Get("/{orderID}", orderHandler.GetOrder)
		r.Patch("/{orderID}/status", orderHandler.UpdateOrderStatus)
	})
}

func setupMaintenanceRoutes(router *chi.Mux, cfg *config.Config, customerService customer.CustomerService, productService product.ProductService, orderService order.OrderService, logger *slog.Logger) {
	maintenanceHandler := handler.NewMaintenanceHandler(
		customerService,
		productService,
		cfg.Purge.InactiveDays,
		cfg.Batch.Restock.Threshold,
		cfg.Batch.Restock.Increment,
		logger,
	)
	reportHandler := handler.NewReportHandler(customerService, orderService, logger)

	router.Route("/maintenance", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/cleanup", maintenanceHandler.CleanupCustomers)
		r.Post("/restock", maintenanceHandler.RestockProducts)
	})

	router.Route("/reports", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Get("/summary", reportHandler.GetSummary)
	})
}
