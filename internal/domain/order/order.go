package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"crm-engine/internal/domain/product"
	"crm-engine/internal/pkg/apperrors"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus converts a wire string into a Status. Matching is case
// insensitive and ignores surrounding whitespace.
func ParseStatus(s string) (Status, error) {
	switch status := Status(strings.ToUpper(strings.TrimSpace(s))); status {
	case StatusPending, StatusCompleted, StatusCancelled:
		return status, nil
	}
	return "", apperrors.NewValidationError("status", fmt.Sprintf("'%s' is not a valid order status", s))
}

type Order struct {
	OrderID     int64
	CustomerID  int64
	Products    []*product.Product
	TotalAmount decimal.Decimal
	Status      Status
	OrderDate   time.Time
}

// TransitionTo moves a pending order to a terminal status. Completed and
// cancelled orders cannot change status again.
func (o *Order) TransitionTo(next Status) error {
	if next != StatusCompleted && next != StatusCancelled {
		return apperrors.NewValidationError("status", fmt.Sprintf("cannot transition an order to '%s'", next))
	}
	if o.Status != StatusPending {
		return fmt.Errorf("%w: order %d is already %s", apperrors.ErrConflict, o.OrderID, o.Status)
	}
	o.Status = next
	return nil
}

// ProductIDs lists the IDs of the products on the order.
func (o *Order) ProductIDs() []int64 {
	ids := make([]int64, 0, len(o.Products))
	for _, p := range o.Products {
		ids = append(ids, p.ProductID)
	}
	return ids
}
