package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"crm-engine/internal/api/handler/dto"
	"crm-engine/internal/domain/order"
	"crm-engine/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	service order.OrderService
	logger  *slog.Logger
}

func NewOrderHandler(s order.OrderService, l *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: s,
		logger:  l.With("component", "OrderHandler"),
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.Is(err, apperrors.ErrEmailTaken), errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInsufficientData):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func getOrderIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "orderID")
	if idStr == "" {
		return 0, fmt.Errorf("orderID not found in URL path")
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// CreateOrder handles the creation of a new order.
//
// @Summary Create a new order
// @Description Creates an order for a customer from a list of product IDs. The total amount is computed from current product prices; the order date defaults to now when omitted.
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body dto.CreateOrderRequest true "Order creation request payload"
// @Success 201 {object} dto.OrderResponse "Order successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload, unknown customer or invalid product IDs"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /orders [post]
// @Security BearerAuth
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	createdOrder, err := h.service.CreateOrder(r.Context(), req.CustomerID, req.ProductIDs, req.OrderDateTime())
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.NewOrderResponse(createdOrder)
	respondJSON(w, http.StatusCreated, resp)
}

// GetOrder retrieves the details of a specific order.
//
// @Summary Retrieve order details
// @Description Retrieves an order, including its products, by its ID.
// @Tags Orders
// @Produce json
// @Param orderID path int true "Order ID"
// @Success 200 {object} dto.OrderResponse "Order details successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid order ID"
// @Failure 404 {object} dto.ErrorResponse "Order not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /orders/{orderID} [get]
// @Security BearerAuth
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := getOrderIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	domainOrder, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.NewOrderResponse(domainOrder)
	respondJSON(w, http.StatusOK, resp)
}

// ListOrders retrieves orders matching the query filters.
//
// @Summary List orders
// @Description Retrieves orders, optionally filtered by customer, product, status, order date range or total amount range.
// @Tags Orders
// @Produce json
// @Param customerId query int false "Exact customer ID"
// @Param customerName query string false "Case-insensitive customer name fragment"
// @Param productId query int false "Orders containing this product ID"
// @Param productName query string false "Orders containing a product whose name matches this fragment"
// @Param status query string false "Order status" Enums(PENDING, COMPLETED, CANCELLED)
// @Param dateFrom query string false "Order date lower bound (RFC 3339)"
// @Param dateTo query string false "Order date upper bound (RFC 3339)"
// @Param totalMin query string false "Minimum total amount"
// @Param totalMax query string false "Maximum total amount"
// @Success 200 {array} dto.OrderResponse "List of orders"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /orders [get]
// @Security BearerAuth
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := orderFilterFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]dto.OrderResponse, len(orders))
	for i, ord := range orders {
		resp[i] = dto.NewOrderResponse(ord)
	}
	respondJSON(w, http.StatusOK, resp)
}

func orderFilterFromQuery(r *http.Request) (order.ListFilter, error) {
	var filter order.ListFilter
	query := r.URL.Query()

	filter.CustomerName = query.Get("customerName")
	filter.ProductName = query.Get("productName")

	if v := query.Get("customerId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return filter, fmt.Errorf("%w: invalid customerId: %s", apperrors.ErrInvalidArgument, v)
		}
		filter.CustomerID = id
	}
	if v := query.Get("productId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return filter, fmt.Errorf("%w: invalid productId: %s", apperrors.ErrInvalidArgument, v)
		}
		filter.ProductID = id
	}
	if v := query.Get("status"); v != "" {
		status, err := order.ParseStatus(v)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if v := query.Get("dateFrom"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid dateFrom (use RFC 3339): %s", apperrors.ErrInvalidArgument, v)
		}
		filter.OrderDateFrom = t
	}
	if v := query.Get("dateTo"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid dateTo (use RFC 3339): %s", apperrors.ErrInvalidArgument, v)
		}
		filter.OrderDateTo = t
	}
	if v := query.Get("totalMin"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid totalMin: %s", apperrors.ErrInvalidArgument, v)
		}
		filter.TotalMin = d
	}
	if v := query.Get("totalMax"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid totalMax: %s", apperrors.ErrInvalidArgument, v)
		}
		filter.TotalMax = d
	}

	return filter, nil
}

// UpdateOrderStatus moves an order to a new status.
//
// @Summary Update order status
// @Description Transitions a pending order to COMPLETED or CANCELLED. Completed and cancelled orders cannot change again.
// @Tags Orders
// @Accept json
// @Produce json
// @Param orderID path int true "Order ID"
// @Param request body dto.UpdateOrderStatusRequest true "Status update payload"
// @Success 200 {object} dto.OrderResponse "Order with its new status"
// @Failure 400 {object} dto.ErrorResponse "Invalid order ID, payload or target status"
// @Failure 404 {object} dto.ErrorResponse "Order not found"
// @Failure 409 {object} dto.ErrorResponse "Order already in a terminal status"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /orders/{orderID}/status [patch]
// @Security BearerAuth
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := getOrderIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		respondError(w, err)
		return
	}

	updatedOrder, err := h.service.UpdateOrderStatus(r.Context(), orderID, status)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.NewOrderResponse(updatedOrder)
	respondJSON(w, http.StatusOK, resp)
}
