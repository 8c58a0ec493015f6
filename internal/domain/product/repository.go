package product

import (
	"context"

	"github.com/shopspring/decimal"

	"crm-engine/internal/pkg/apperrors"
)

var ErrNotFound = apperrors.ErrNotFound

// ListFilter narrows FindAll results. Zero values mean no constraint.
// LowStock selects products with stock below DefaultLowStockThreshold.
type ListFilter struct {
	Name     string
	PriceMin decimal.Decimal
	PriceMax decimal.Decimal
	StockMin int32
	StockMax int32
	LowStock bool
}

type Repository interface {
	Save(ctx context.Context, prod *Product) error

	FindByID(ctx context.Context, productID int64) (*Product, error)

	FindByIDs(ctx context.Context, productIDs []int64) ([]*Product, error)

	FindAll(ctx context.Context, filter ListFilter) ([]*Product, error)

	// RestockBelow adds increment units to every product with stock below
	// threshold and returns the updated rows.
	RestockBelow(ctx context.Context, threshold, increment int32) ([]*Product, error)
}
