package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"crm-engine/internal/domain/order"
	"crm-engine/internal/domain/product"
	"crm-engine/internal/infrastructure/monitoring"
	"crm-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type OrderRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ order.Repository = (*OrderRepository)(nil)

func NewOrderRepository(db DBPool, logger *slog.Logger) *OrderRepository {
	return &OrderRepository{db: db, logger: logger.With("component", "OrderRepository")}
}

func (r *OrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return tx, nil
}

func (r *OrderRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Commit(ctx)
	if err != nil {

		r.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *OrderRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", err)

		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

// CreateOrder inserts the order row and its product links in one
// transaction, so a failed link insert never leaves a dangling order.
func (r *OrderRepository) CreateOrder(ctx context.Context, ord *order.Order) (*order.Order, error) {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer r.RollbackTx(ctx, tx)

	orderSQL := `
        INSERT INTO orders (customer_id, total_amount, status, order_date)
        VALUES ($1, $2, $3, $4)
        RETURNING id, customer_id, total_amount, status, order_date`

	var created order.Order
	err = tx.QueryRow(ctx, orderSQL,
		ord.CustomerID, ord.TotalAmount, ord.Status, ord.OrderDate,
	).Scan(
		&created.OrderID, &created.CustomerID, &created.TotalAmount,
		&created.Status, &created.OrderDate,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert order", "error", err)

		return nil, fmt.Errorf("%w: failed to insert order: %w", apperrors.ErrDatabase, err)
	}
	r.logger.InfoContext(ctx, "Order created in DB", "order_id", created.OrderID)

	if len(ord.Products) > 0 {
		joinSQL := `
            INSERT INTO order_products (order_id, product_id)
            VALUES ($1, $2)`

		batch := &pgx.Batch{}
		for _, prod := range ord.Products {
			batch.Queue(joinSQL, created.OrderID, prod.ProductID)
		}

		results := tx.SendBatch(ctx, batch)

		for i := 0; i < len(ord.Products); i++ {
			_, err = results.Exec()
			if err != nil {
				results.Close()
				r.logger.ErrorContext(ctx, "Failed executing order product batch insert", "error", err, "entry_index", i, "order_id", created.OrderID)
				return nil, fmt.Errorf("%w: failed inserting order product %d: %w", apperrors.ErrDatabase, i+1, err)
			}
		}
		err = results.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed closing order product batch results", "error", err, "order_id", created.OrderID)
			return nil, fmt.Errorf("%w: closing batch results failed: %w", apperrors.ErrDatabase, err)
		}
	}

	if err := r.CommitTx(ctx, tx); err != nil {
		return nil, err
	}

	created.Products = ord.Products
	r.logger.InfoContext(ctx, "Order products linked in DB", "order_id", created.OrderID, "num_products", len(ord.Products))
	return &created, nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, orderID int64) (*order.Order, error) {
	query := `
        SELECT id, customer_id, total_amount, status, order_date
        FROM orders
        WHERE id = $1`
	status := "success"
	startTime := time.Now()

	var ord order.Order
	err := r.db.QueryRow(ctx, query, orderID).Scan(
		&ord.OrderID, &ord.CustomerID, &ord.TotalAmount, &ord.Status, &ord.OrderDate,
	)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetOrderByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Order not found", "order_id", orderID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get order by ID", "order_id", orderID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	products, err := r.findOrderProducts(ctx, orderID)
	if err != nil {
		return nil, err
	}
	ord.Products = products

	return &ord, nil
}

func (r *OrderRepository) findOrderProducts(ctx context.Context, orderID int64) ([]*product.Product, error) {
	query := `
        SELECT p.id, p.name, p.description, p.price, p.stock, p.created_at, p.updated_at
        FROM products p
        JOIN order_products op ON op.product_id = p.id
        WHERE op.order_id = $1
        ORDER BY p.id ASC`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query order products", "order_id", orderID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	return scanProducts(rows, r.logger)
}

func (r *OrderRepository) FindAll(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	query := `
        SELECT id, customer_id, total_amount, status, order_date
        FROM orders`
	args := []any{}
	conds := []string{}
	if filter.CustomerID != 0 {
		args = append(args, filter.CustomerID)
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.CustomerName != "" {
		args = append(args, "%"+filter.CustomerName+"%")
		conds = append(conds, fmt.Sprintf("EXISTS (SELECT 1 FROM customers c WHERE c.id = orders.customer_id AND c.name ILIKE $%d)", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ProductID != 0 {
		args = append(args, filter.ProductID)
		conds = append(conds, fmt.Sprintf("EXISTS (SELECT 1 FROM order_products op WHERE op.order_id = orders.id AND op.product_id = $%d)", len(args)))
	}
	if filter.ProductName != "" {
		args = append(args, "%"+filter.ProductName+"%")
		conds = append(conds, fmt.Sprintf("EXISTS (SELECT 1 FROM order_products op JOIN products p ON p.id = op.product_id WHERE op.order_id = orders.id AND p.name ILIKE $%d)", len(args)))
	}
	if !filter.OrderDateFrom.IsZero() {
		args = append(args, filter.OrderDateFrom)
		conds = append(conds, fmt.Sprintf("order_date >= $%d", len(args)))
	}
	if !filter.OrderDateTo.IsZero() {
		args = append(args, filter.OrderDateTo)
		conds = append(conds, fmt.Sprintf("order_date <= $%d", len(args)))
	}
	if !filter.TotalMin.IsZero() {
		args = append(args, filter.TotalMin)
		conds = append(conds, fmt.Sprintf("total_amount >= $%d", len(args)))
	}
	if !filter.TotalMax.IsZero() {
		args = append(args, filter.TotalMax)
		conds = append(conds, fmt.Sprintf("total_amount <= $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query orders", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	orders := make([]*order.Order, 0)
	for rows.Next() {
		var ord order.Order
		err := rows.Scan(
			&ord.OrderID, &ord.CustomerID, &ord.TotalAmount, &ord.Status, &ord.OrderDate,
		)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan order row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		orders = append(orders, &ord)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating order rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	if err := r.attachProducts(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// attachProducts loads the product rows for a set of orders in one query.
func (r *OrderRepository) attachProducts(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	orderIDs := make([]int64, 0, len(orders))
	byID := make(map[int64]*order.Order, len(orders))
	for _, ord := range orders {
		orderIDs = append(orderIDs, ord.OrderID)
		byID[ord.OrderID] = ord
	}

	query := `
        SELECT op.order_id, p.id, p.name, p.description, p.price, p.stock, p.created_at, p.updated_at
        FROM products p
        JOIN order_products op ON op.product_id = p.id
        WHERE op.order_id = ANY($1)
        ORDER BY op.order_id ASC, p.id ASC`

	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query products for orders", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var prod product.Product
		err := rows.Scan(
			&orderID, &prod.ProductID, &prod.Name, &prod.Description,
			&prod.Price, &prod.Stock, &prod.CreatedAt, &prod.UpdatedAt,
		)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan order product row", "error", err)
			return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		if ord, ok := byID[orderID]; ok {
			ord.Products = append(ord.Products, &prod)
		}
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating order product rows", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return nil
}

func (r *OrderRepository) FindPendingSince(ctx context.Context, since time.Time) ([]order.PendingOrder, error) {
	query := `
        SELECT o.id, c.email, o.order_date
        FROM orders o
        JOIN customers c ON c.id = o.customer_id
        WHERE o.status = $1 AND o.order_date >= $2
        ORDER BY o.order_date ASC`

	rows, err := r.db.Query(ctx, query, order.StatusPending, since)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query pending orders", "since", since, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	pending := make([]order.PendingOrder, 0)
	for rows.Next() {
		var p order.PendingOrder
		if err := rows.Scan(&p.OrderID, &p.CustomerEmail, &p.OrderDate); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan pending order row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		pending = append(pending, p)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating pending order rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return pending, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status order.Status) error {
	sql := `UPDATE orders SET status = $1 WHERE id = $2`

	cmdTag, err := r.db.Exec(ctx, sql, status, orderID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update order status", "order_id", orderID, "status", status, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Order status update affected zero rows", "order_id", orderID)
		return apperrors.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Order status updated in DB", "order_id", orderID, "new_status", status)
	return nil
}

func (r *OrderRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM orders`

	var count int64
	err := r.db.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count orders", "error", err)
		return 0, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return count, nil
}

func (r *OrderRepository) SumTotalAmount(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(total_amount), 0) FROM orders`

	var total decimal.Decimal
	err := r.db.QueryRow(ctx, query).Scan(&total)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to sum order totals", "error", err)
		return decimal.Zero, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return total, nil
}
