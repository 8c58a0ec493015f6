package batch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"crm-engine/internal/batch"
	"crm-engine/internal/domain/order"
	"crm-engine/internal/infrastructure/joblog"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, customerID int64, productIDs []int64, orderDate time.Time) (*order.Order, error) {
	args := m.Called(ctx, customerID, productIDs, orderDate)
	var ord *order.Order
	if args.Get(0) != nil {
		ord = args.Get(0).(*order.Order)
	}
	return ord, args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID int64) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	var ord *order.Order
	if args.Get(0) != nil {
		ord = args.Get(0).(*order.Order)
	}
	return ord, args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	args := m.Called(ctx, filter)
	var orders []*order.Order
	if args.Get(0) != nil {
		orders = args.Get(0).([]*order.Order)
	}
	return orders, args.Error(1)
}

func (m *MockOrderService) ListPendingSince(ctx context.Context, since time.Time) ([]order.PendingOrder, error) {
	args := m.Called(ctx, since)
	var pending []order.PendingOrder
	if args.Get(0) != nil {
		pending = args.Get(0).([]order.PendingOrder)
	}
	return pending, args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, orderID int64, status order.Status) (*order.Order, error) {
	args := m.Called(ctx, orderID, status)
	var ord *order.Order
	if args.Get(0) != nil {
		ord = args.Get(0).(*order.Order)
	}
	return ord, args.Error(1)
}

func (m *MockOrderService) CountOrders(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderService) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

var _ order.OrderService = (*MockOrderService)(nil)

func newReminderJob(t *testing.T) (*MockOrderService, *batch.ReminderJob, string) {
	t.Helper()
	mockOrderService := new(MockOrderService)
	logPath := filepath.Join(t.TempDir(), "order_reminders_log.txt")
	job := batch.NewReminderJob(mockOrderService, joblog.NewAppender(logPath), 7, testLogger)
	return mockOrderService, job, logPath
}

func TestReminderJobRun(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	since := now.Add(-7 * 24 * time.Hour)

	t.Run("writes one line per pending order", func(t *testing.T) {
		mockOrderService, job, logPath := newReminderJob(t)
		pending := []order.PendingOrder{
			{OrderID: 11, CustomerEmail: "alice@example.com", OrderDate: now.Add(-48 * time.Hour)},
			{OrderID: 12, CustomerEmail: "bob@example.com", OrderDate: now.Add(-24 * time.Hour)},
		}
		mockOrderService.On("ListPendingSince", ctx, since).Return(pending, nil)

		err := job.RunAt(ctx, now)
		assert.NoError(t, err)

		content, readErr := os.ReadFile(logPath)
		assert.NoError(t, readErr)
		assert.Equal(t,
			"2026-03-01 08:00:00 - Reminder: Order 11 for customer alice@example.com\n"+
				"2026-03-01 08:00:00 - Reminder: Order 12 for customer bob@example.com\n",
			string(content))
		mockOrderService.AssertExpectations(t)
	})

	t.Run("writes nothing when no orders are pending", func(t *testing.T) {
		mockOrderService, job, logPath := newReminderJob(t)
		mockOrderService.On("ListPendingSince", ctx, since).Return([]order.PendingOrder{}, nil)

		err := job.RunAt(ctx, now)
		assert.NoError(t, err)

		_, statErr := os.Stat(logPath)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("appends error line when fetch fails", func(t *testing.T) {
		mockOrderService, job, logPath := newReminderJob(t)
		mockOrderService.On("ListPendingSince", ctx, since).Return(nil, errors.New("database error"))

		err := job.RunAt(ctx, now)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot run reminder job")

		content, readErr := os.ReadFile(logPath)
		assert.NoError(t, readErr)
		assert.Equal(t, "2026-03-01 08:00:00 - Error fetching orders: database error\n", string(content))
	})
}
