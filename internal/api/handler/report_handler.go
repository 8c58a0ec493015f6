package handler

import (
	"log/slog"
	"net/http"
	"time"

	"crm-engine/internal/api/handler/dto"
	"crm-engine/internal/domain/customer"
	"crm-engine/internal/domain/order"
)

type ReportHandler struct {
	customerService customer.CustomerService
	orderService    order.OrderService
	logger          *slog.Logger
}

func NewReportHandler(customerSvc customer.CustomerService, orderSvc order.OrderService, l *slog.Logger) *ReportHandler {
	return &ReportHandler{
		customerService: customerSvc,
		orderService:    orderSvc,
		logger:          l.With("component", "ReportHandler"),
	}
}

// GetSummary returns the current business totals.
//
// @Summary Retrieve report summary
// @Description Returns the total customer count, order count and revenue across all orders. These are the same totals the weekly report writes to its log.
// @Tags Reports
// @Produce json
// @Success 200 {object} dto.ReportSummaryResponse "Current totals"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/summary [get]
// @Security BearerAuth
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerService.CountCustomers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	orders, err := h.orderService.CountOrders(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	revenue, err := h.orderService.TotalRevenue(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.ReportSummaryResponse{
		Customers:   customers,
		Orders:      orders,
		Revenue:     revenue.StringFixed(2),
		GeneratedAt: time.Now().UTC(),
	}
	respondJSON(w, http.StatusOK, resp)
}
