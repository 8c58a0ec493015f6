package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"crm-engine/internal/domain/product"
	"crm-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

type ProductRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ product.Repository = (*ProductRepository)(nil)

func NewProductRepository(db DBPool, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{db: db, logger: logger.With("component", "ProductRepository")}
}

func (r *ProductRepository) Save(ctx context.Context, prod *product.Product) error {
	if prod == nil {
		return fmt.Errorf("%w: product cannot be nil", apperrors.ErrInvalidArgument)
	}

	if prod.ProductID == 0 {
		return r.createProduct(ctx, prod)
	}
	return r.updateProduct(ctx, prod)
}

func (r *ProductRepository) createProduct(ctx context.Context, prod *product.Product) error {
	query := `
        INSERT INTO products (name, description, price, stock, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		prod.Name, prod.Description, prod.Price, prod.Stock,
	).Scan(&prod.ProductID, &prod.CreatedAt, &prod.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert product", "name", prod.Name, "error", err)
		return fmt.Errorf("%w: failed to insert product: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Product created in DB", "product_id", prod.ProductID)
	return nil
}

func (r *ProductRepository) updateProduct(ctx context.Context, prod *product.Product) error {
	query := `
        UPDATE products
        SET name = $1, description = $2, price = $3, stock = $4, updated_at = NOW()
        WHERE id = $5`

	cmdTag, err := r.db.Exec(ctx, query,
		prod.Name, prod.Description, prod.Price, prod.Stock, prod.ProductID,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update product", "product_id", prod.ProductID, "error", err)
		return fmt.Errorf("%w: failed to update product: %w", apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Product update affected zero rows", "product_id", prod.ProductID)
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, productID int64) (*product.Product, error) {
	query := `
        SELECT id, name, description, price, stock, created_at, updated_at
        FROM products
        WHERE id = $1`

	var prod product.Product
	err := r.db.QueryRow(ctx, query, productID).Scan(
		&prod.ProductID, &prod.Name, &prod.Description,
		&prod.Price, &prod.Stock, &prod.CreatedAt, &prod.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Product not found", "product_id", productID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get product by ID", "product_id", productID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return &prod, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, productIDs []int64) ([]*product.Product, error) {
	query := `
        SELECT id, name, description, price, stock, created_at, updated_at
        FROM products
        WHERE id = ANY($1)
        ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, productIDs)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query products by IDs", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	return scanProducts(rows, r.logger)
}

func (r *ProductRepository) FindAll(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	query := `
        SELECT id, name, description, price, stock, created_at, updated_at
        FROM products`
	args := []any{}
	conds := []string{}
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if !filter.PriceMin.IsZero() {
		args = append(args, filter.PriceMin)
		conds = append(conds, fmt.Sprintf("price >= $%d", len(args)))
	}
	if !filter.PriceMax.IsZero() {
		args = append(args, filter.PriceMax)
		conds = append(conds, fmt.Sprintf("price <= $%d", len(args)))
	}
	if filter.StockMin > 0 {
		args = append(args, filter.StockMin)
		conds = append(conds, fmt.Sprintf("stock >= $%d", len(args)))
	}
	if filter.StockMax > 0 {
		args = append(args, filter.StockMax)
		conds = append(conds, fmt.Sprintf("stock <= $%d", len(args)))
	}
	if filter.LowStock {
		args = append(args, int32(product.DefaultLowStockThreshold))
		conds = append(conds, fmt.Sprintf("stock < $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query products", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	return scanProducts(rows, r.logger)
}

// RestockBelow tops up every product below threshold in a single statement,
// so overlapping restock runs never double count a product.
func (r *ProductRepository) RestockBelow(ctx context.Context, threshold, increment int32) ([]*product.Product, error) {
	query := `
        UPDATE products
        SET stock = stock + $2, updated_at = NOW()
        WHERE stock < $1
        RETURNING id, name, description, price, stock, created_at, updated_at`

	rows, err := r.db.Query(ctx, query, threshold, increment)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to restock products", "threshold", threshold, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	products, err := scanProducts(rows, r.logger)
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "Products restocked in DB", "count", len(products), "threshold", threshold, "increment", increment)
	return products, nil
}

func scanProducts(rows pgx.Rows, logger *slog.Logger) ([]*product.Product, error) {
	products := make([]*product.Product, 0)
	for rows.Next() {
		var prod product.Product
		err := rows.Scan(
			&prod.ProductID, &prod.Name, &prod.Description,
			&prod.Price, &prod.Stock, &prod.CreatedAt, &prod.UpdatedAt,
		)
		if err != nil {
			logger.Error("Failed to scan product row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		products = append(products, &prod)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error iterating product rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return products, nil
}
