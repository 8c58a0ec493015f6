package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"crm-engine/internal/api/handler/dto"
	"crm-engine/internal/domain/customer"
	"crm-engine/internal/domain/product"
	"crm-engine/internal/pkg/apperrors"
)

// MaintenanceHandler exposes the purge and restock routines on demand, with
// the same semantics as their scheduled counterparts. Runs triggered here are
// not written to the batch log files; those stay a scheduler artifact.
type MaintenanceHandler struct {
	customerService customer.CustomerService
	productService  product.ProductService
	retention       time.Duration
	threshold       int32
	increment       int32
	logger          *slog.Logger
}

func NewMaintenanceHandler(customerSvc customer.CustomerService, productSvc product.ProductService, inactiveDays, threshold, increment int, l *slog.Logger) *MaintenanceHandler {
	if inactiveDays <= 0 {
		inactiveDays = 365
	}
	return &MaintenanceHandler{
		customerService: customerSvc,
		productService:  productSvc,
		retention:       time.Duration(inactiveDays) * 24 * time.Hour,
		threshold:       int32(threshold),
		increment:       int32(increment),
		logger:          l.With("component", "MaintenanceHandler"),
	}
}

// CleanupCustomers purges customers with no recent orders.
//
// @Summary Purge inactive customers
// @Description Deletes customers whose most recent order is older than the configured retention window, customers with no orders included. With dryRun=true only the would-be deletion count is returned.
// @Tags Maintenance
// @Produce json
// @Param dryRun query bool false "Report the count without deleting"
// @Success 200 {object} dto.CleanupResponse "Number of customers deleted (or counted)"
// @Failure 400 {object} dto.ErrorResponse "Invalid dryRun value"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /maintenance/cleanup [post]
// @Security BearerAuth
func (h *MaintenanceHandler) CleanupCustomers(w http.ResponseWriter, r *http.Request) {
	dryRun := false
	if v := r.URL.Query().Get("dryRun"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, fmt.Errorf("%w: invalid dryRun: %s", apperrors.ErrInvalidArgument, v))
			return
		}
		dryRun = parsed
	}

	h.logger.InfoContext(r.Context(), "Manual customer cleanup requested.", "dry_run", dryRun)

	var (
		deleted int64
		err     error
	)
	if dryRun {
		deleted, err = h.customerService.CountInactive(r.Context(), time.Now(), h.retention)
	} else {
		deleted, err = h.customerService.PurgeInactive(r.Context(), time.Now(), h.retention)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.CleanupResponse{DryRun: dryRun, Deleted: deleted})
}

// RestockProducts tops up every product below the low-stock threshold.
//
// @Summary Restock low-stock products
// @Description Raises the stock of every product below the configured threshold by the configured increment and returns the updated products.
// @Tags Maintenance
// @Produce json
// @Success 200 {object} dto.RestockResponse "Restocked products"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /maintenance/restock [post]
// @Security BearerAuth
func (h *MaintenanceHandler) RestockProducts(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "Manual restock requested.", "threshold", h.threshold, "increment", h.increment)

	updated, err := h.productService.RestockLowStock(r.Context(), h.threshold, h.increment)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.RestockResponse{
		Restocked: len(updated),
		Products:  dto.NewProductResponses(updated),
	}
	respondJSON(w, http.StatusOK, resp)
}
