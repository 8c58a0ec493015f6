package dto

import (
	"fmt"
	"strconv"
	"time"

	"crm-engine/internal/domain/order"
)

type CreateOrderRequest struct {
	CustomerID int64   `json:"customerId"`
	ProductIDs []int64 `json:"productIds"`
	OrderDate  string  `json:"orderDate,omitempty"`
}

func (r *CreateOrderRequest) Validate() error {
	if r.CustomerID <= 0 {
		return fmt.Errorf("customerId must be a positive number")
	}
	if len(r.ProductIDs) == 0 {
		return fmt.Errorf("productIds cannot be empty")
	}
	for _, id := range r.ProductIDs {
		if id <= 0 {
			return fmt.Errorf("productIds must all be positive numbers")
		}
	}
	if r.OrderDate != "" {
		if _, err := time.Parse(time.RFC3339, r.OrderDate); err != nil {
			return fmt.Errorf("invalid orderDate format (use RFC 3339): %w", err)
		}
	}
	return nil
}

// OrderDateTime returns the parsed order date, or the zero time when the
// field was omitted. Call Validate first.
func (r *CreateOrderRequest) OrderDateTime() time.Time {
	if r.OrderDate == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339, r.OrderDate)
	return t
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (r *UpdateOrderStatusRequest) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("status cannot be empty")
	}
	return nil
}

type OrderResponse struct {
	OrderID     string            `json:"orderId"`
	CustomerID  string            `json:"customerId"`
	Products    []ProductResponse `json:"products,omitempty"`
	TotalAmount string            `json:"totalAmount"`
	Status      string            `json:"status"`
	OrderDate   time.Time         `json:"orderDate"`
}

func NewOrderResponse(ord *order.Order) OrderResponse {
	if ord == nil {
		return OrderResponse{}
	}

	return OrderResponse{
		OrderID:     strconv.FormatInt(ord.OrderID, 10),
		CustomerID:  strconv.FormatInt(ord.CustomerID, 10),
		Products:    NewProductResponses(ord.Products),
		TotalAmount: ord.TotalAmount.StringFixed(2),
		Status:      string(ord.Status),
		OrderDate:   ord.OrderDate,
	}
}
