package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"crm-engine/internal/domain/customer"
	"crm-engine/internal/domain/product"
	"crm-engine/internal/event"
	"crm-engine/internal/infrastructure/monitoring"
	"crm-engine/internal/pkg/apperrors"
)

type OrderService interface {
	CreateOrder(ctx context.Context, customerID int64, productIDs []int64, orderDate time.Time) (*Order, error)

	GetOrder(ctx context.Context, orderID int64) (*Order, error)

	ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error)

	ListPendingSince(ctx context.Context, since time.Time) ([]PendingOrder, error)

	UpdateOrderStatus(ctx context.Context, orderID int64, status Status) (*Order, error)

	CountOrders(ctx context.Context) (int64, error)

	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
}

type orderServiceImpl struct {
	repo            Repository
	customerService customer.CustomerService
	productService  product.ProductService
	pub             event.EventPublisher
	logger          *slog.Logger
}

func NewOrderService(r Repository, cs customer.CustomerService, ps product.ProductService, eventPublisher event.EventPublisher, logger *slog.Logger) OrderService {
	if eventPublisher == nil {
		eventPublisher = event.NewNoopPublisher()
	}
	return &orderServiceImpl{repo: r, customerService: cs, productService: ps, pub: eventPublisher, logger: logger}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, customerID int64, productIDs []int64, orderDate time.Time) (*Order, error) {
	s.logger.Info("Creating new order", "customerID", customerID, "products", len(productIDs))

	if len(productIDs) == 0 {
		s.logger.Error("Attempted to create order without products")
		return nil, fmt.Errorf("%w: order must contain at least one product", apperrors.ErrValidation)
	}

	_, err := s.customerService.GetCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			s.logger.Error("Customer not found", slog.Any("error", err))
			return nil, fmt.Errorf("%w: customer with ID %d does not exist", apperrors.ErrValidation, customerID)
		}
		s.logger.Error("Failed to get customer details from customer service", slog.Any("error", err))
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}

	seen := make(map[int64]bool, len(productIDs))
	uniqueIDs := make([]int64, 0, len(productIDs))
	for _, id := range productIDs {
		if !seen[id] {
			seen[id] = true
			uniqueIDs = append(uniqueIDs, id)
		}
	}

	products, err := s.productService.GetProductsByIDs(ctx, uniqueIDs)
	if err != nil {
		s.logger.Error("Failed to resolve order products", slog.Any("error", err))
		return nil, err
	}

	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}

	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	ord := &Order{
		CustomerID:  customerID,
		Products:    products,
		TotalAmount: total,
		Status:      StatusPending,
		OrderDate:   orderDate,
	}

	createdOrder, err := s.repo.CreateOrder(ctx, ord)
	if err != nil {
		s.logger.Error("Failed to save order", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to save order: %v", apperrors.ErrInternalServer, err)
	}

	monitoring.RecordOrderCreated()

	createdEvent := event.OrderCreatedEvent{
		OrderID:     createdOrder.OrderID,
		CustomerID:  createdOrder.CustomerID,
		ProductIDs:  createdOrder.ProductIDs(),
		TotalAmount: createdOrder.TotalAmount.StringFixed(2),
		Status:      string(createdOrder.Status),
		Timestamp:   time.Now(),
	}
	if pubErr := s.pub.PublishOrderCreated(ctx, createdEvent); pubErr != nil {
		s.logger.Error("Order created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	s.logger.Info("Order created successfully", "orderID", createdOrder.OrderID, "customerID", customerID, "totalAmount", createdOrder.TotalAmount.StringFixed(2))
	return createdOrder, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	s.logger.Info("Getting order details", "orderID", orderID)
	ord, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("Order not found", "orderID", orderID)
			return nil, fmt.Errorf("%w: order with ID %d not found", apperrors.ErrNotFound, orderID)
		}

		s.logger.Error("Failed to get order", "orderID", orderID, "error", err)
		return nil, fmt.Errorf("%w: failed to get order %d: %v", apperrors.ErrInternalServer, orderID, err)
	}

	return ord, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error) {
	s.logger.Info("Listing orders")
	orders, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list orders", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to list orders: %v", apperrors.ErrInternalServer, err)
	}

	return orders, nil
}

func (s *orderServiceImpl) ListPendingSince(ctx context.Context, since time.Time) ([]PendingOrder, error) {
	s.logger.Info("Listing pending orders", "since", since)
	pending, err := s.repo.FindPendingSince(ctx, since)
	if err != nil {
		s.logger.Error("Failed to list pending orders", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to list pending orders: %v", apperrors.ErrInternalServer, err)
	}

	return pending, nil
}

func (s *orderServiceImpl) UpdateOrderStatus(ctx context.Context, orderID int64, status Status) (*Order, error) {
	s.logger.Info("Updating order status", "orderID", orderID, "status", status)

	ord, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := ord.TransitionTo(status); err != nil {
		s.logger.Warn("Order status transition rejected", "orderID", orderID, "error", err)
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("Order disappeared before status update", "orderID", orderID)
			return nil, fmt.Errorf("%w: order with ID %d not found", apperrors.ErrNotFound, orderID)
		}
		s.logger.Error("Failed to update order status", "orderID", orderID, "error", err)
		return nil, fmt.Errorf("%w: failed to update status of order %d: %v", apperrors.ErrInternalServer, orderID, err)
	}

	s.logger.Info("Order status updated", "orderID", orderID, "status", status)
	return ord, nil
}

func (s *orderServiceImpl) CountOrders(ctx context.Context) (int64, error) {
	count, err := s.repo.CountAll(ctx)
	if err != nil {
		s.logger.Error("Failed to count orders", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to count orders: %v", apperrors.ErrInternalServer, err)
	}
	return count, nil
}

func (s *orderServiceImpl) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	revenue, err := s.repo.SumTotalAmount(ctx)
	if err != nil {
		s.logger.Error("Failed to sum order totals", slog.Any("error", err))
		return decimal.Zero, fmt.Errorf("%w: failed to sum order totals: %v", apperrors.ErrInternalServer, err)
	}
	return revenue, nil
}
