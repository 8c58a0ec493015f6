package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"crm-engine/internal/domain/product"

	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Stock       int32  `json:"stock"`
}

func (r *CreateProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil || r.Price == "" {
		return fmt.Errorf("invalid price: %w", err)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("price must be positive")
	}
	if r.Stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}
	return nil
}

// PriceDecimal returns the parsed price. Call Validate first.
func (r *CreateProductRequest) PriceDecimal() decimal.Decimal {
	price, _ := decimal.NewFromString(r.Price)
	return price
}

type ProductResponse struct {
	ProductID   string    `json:"productId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price"`
	Stock       int32     `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewProductResponse(prod *product.Product) ProductResponse {
	if prod == nil {
		return ProductResponse{}
	}

	return ProductResponse{
		ProductID:   strconv.FormatInt(prod.ProductID, 10),
		Name:        prod.Name,
		Description: prod.Description,
		Price:       prod.Price.StringFixed(2),
		Stock:       prod.Stock,
		CreatedAt:   prod.CreatedAt,
		UpdatedAt:   prod.UpdatedAt,
	}
}

func NewProductResponses(products []*product.Product) []ProductResponse {
	resp := make([]ProductResponse, len(products))
	for i, prod := range products {
		resp[i] = NewProductResponse(prod)
	}
	return resp
}
