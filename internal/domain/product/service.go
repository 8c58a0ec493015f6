package product

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"crm-engine/internal/infrastructure/monitoring"
	"crm-engine/internal/pkg/apperrors"
)

type ProductService interface {
	CreateProduct(ctx context.Context, name, description string, price decimal.Decimal, stock int32) (*Product, error)

	GetProduct(ctx context.Context, productID int64) (*Product, error)

	GetProductsByIDs(ctx context.Context, productIDs []int64) ([]*Product, error)

	ListProducts(ctx context.Context, filter ListFilter) ([]*Product, error)

	RestockLowStock(ctx context.Context, threshold, increment int32) ([]*Product, error)
}

type productServiceImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewProductService(r Repository, logger *slog.Logger) ProductService {
	return &productServiceImpl{repo: r, logger: logger}
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, name, description string, price decimal.Decimal, stock int32) (*Product, error) {
	s.logger.Info("Creating new product", "name", name)

	prod := NewProduct(name, description, price, stock)
	if err := prod.Validate(); err != nil {
		s.logger.Error("Product validation failed", slog.Any("error", err))
		return nil, err
	}

	if err := s.repo.Save(ctx, prod); err != nil {
		s.logger.Error("Failed to save product", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to save product: %v", apperrors.ErrInternalServer, err)
	}

	s.logger.Info("Product created successfully", "productID", prod.ProductID, "name", prod.Name)
	return prod, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	s.logger.Info("Getting product details", "productID", productID)
	prod, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("Product not found", "productID", productID)
			return nil, fmt.Errorf("%w: product with ID %d not found", apperrors.ErrNotFound, productID)
		}

		s.logger.Error("Failed to get product", "productID", productID, "error", err)
		return nil, fmt.Errorf("%w: failed to get product %d: %v", apperrors.ErrInternalServer, productID, err)
	}

	return prod, nil
}

// GetProductsByIDs resolves the given IDs and fails when any of them does
// not exist, naming the missing IDs in the error.
func (s *productServiceImpl) GetProductsByIDs(ctx context.Context, productIDs []int64) ([]*Product, error) {
	s.logger.Info("Getting products by IDs", "count", len(productIDs))

	if len(productIDs) == 0 {
		return nil, fmt.Errorf("%w: no product IDs provided", apperrors.ErrInvalidArgument)
	}

	products, err := s.repo.FindByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error("Failed to get products by IDs", "error", err)
		return nil, fmt.Errorf("%w: failed to get products: %v", apperrors.ErrInternalServer, err)
	}

	if len(products) != len(productIDs) {
		found := make(map[int64]bool, len(products))
		for _, p := range products {
			found[p.ProductID] = true
		}
		var invalid []string
		for _, id := range productIDs {
			if !found[id] {
				invalid = append(invalid, fmt.Sprintf("%d", id))
			}
		}
		s.logger.Warn("Invalid product IDs requested", "invalid", invalid)
		return nil, fmt.Errorf("%w: invalid product ID(s) found: %s",
			apperrors.ErrValidation, strings.Join(invalid, ", "))
	}

	return products, nil
}

func (s *productServiceImpl) ListProducts(ctx context.Context, filter ListFilter) ([]*Product, error) {
	s.logger.Info("Listing products")
	products, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list products", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to list products: %v", apperrors.ErrInternalServer, err)
	}

	return products, nil
}

// RestockLowStock tops up every product with stock below threshold by
// increment units. Non-positive arguments fall back to the package
// defaults.
func (s *productServiceImpl) RestockLowStock(ctx context.Context, threshold, increment int32) ([]*Product, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	if increment <= 0 {
		increment = DefaultRestockIncrement
	}
	s.logger.Info("Restocking low stock products", "threshold", threshold, "increment", increment)

	updated, err := s.repo.RestockBelow(ctx, threshold, increment)
	if err != nil {
		s.logger.Error("Failed to restock low stock products", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to restock low stock products: %v", apperrors.ErrInternalServer, err)
	}

	if len(updated) > 0 {
		monitoring.RecordProductsRestocked(len(updated))
	}

	s.logger.Info("Low stock products restocked", "count", len(updated))
	return updated, nil
}
