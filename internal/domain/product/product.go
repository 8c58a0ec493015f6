package product

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"crm-engine/internal/pkg/apperrors"
)

const (
	// DefaultLowStockThreshold marks products with fewer units in stock
	// as low stock.
	DefaultLowStockThreshold = 10

	// DefaultRestockIncrement is how many units a restock run adds to
	// each low stock product.
	DefaultRestockIncrement = 10
)

type Product struct {
	ProductID   int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewProduct(name, description string, price decimal.Decimal, stock int32) *Product {
	return &Product{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Price:       price,
		Stock:       stock,
	}
}

func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.NewValidationError("name", "name cannot be empty")
	}
	if !p.Price.IsPositive() {
		return apperrors.NewValidationError("price", "price must be a positive number")
	}
	if p.Stock < 0 {
		return apperrors.NewValidationError("stock", "stock cannot be a negative number")
	}
	return nil
}

// IsLowStock reports whether the product is below the given threshold.
// A threshold of zero or less falls back to DefaultLowStockThreshold.
func (p *Product) IsLowStock(threshold int32) bool {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return p.Stock < threshold
}
