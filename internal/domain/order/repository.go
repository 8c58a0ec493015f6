package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"crm-engine/internal/pkg/apperrors"
)

var ErrNotFound = apperrors.ErrNotFound

// ListFilter narrows FindAll results. Zero values mean no constraint.
type ListFilter struct {
	CustomerID    int64
	CustomerName  string
	Status        Status
	ProductID     int64
	ProductName   string
	OrderDateFrom time.Time
	OrderDateTo   time.Time
	TotalMin      decimal.Decimal
	TotalMax      decimal.Decimal
}

// PendingOrder is the projection the reminder run works from: one row per
// pending order joined with the owning customer's contact details.
type PendingOrder struct {
	OrderID       int64
	CustomerEmail string
	OrderDate     time.Time
}

type Repository interface {
	CreateOrder(ctx context.Context, ord *Order) (createdOrder *Order, err error)

	GetOrderByID(ctx context.Context, orderID int64) (*Order, error)

	FindAll(ctx context.Context, filter ListFilter) ([]*Order, error)

	// FindPendingSince returns every pending order dated at or after since.
	FindPendingSince(ctx context.Context, since time.Time) ([]PendingOrder, error)

	UpdateStatus(ctx context.Context, orderID int64, status Status) error

	CountAll(ctx context.Context) (int64, error)

	// SumTotalAmount adds up the total amount of every order, zero when
	// there are none.
	SumTotalAmount(ctx context.Context) (decimal.Decimal, error)
}
