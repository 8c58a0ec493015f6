package batch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"crm-engine/internal/batch"
	"crm-engine/internal/domain/customer"
	"crm-engine/internal/infrastructure/joblog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) CreateNewCustomer(ctx context.Context, name, email, phone string) (*customer.Customer, error) {
	args := m.Called(ctx, name, email, phone)
	var cust *customer.Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*customer.Customer)
	}
	return cust, args.Error(1)
}

func (m *MockCustomerService) BulkCreateCustomers(ctx context.Context, inputs []customer.CreateCustomerInput) ([]*customer.Customer, []string, error) {
	args := m.Called(ctx, inputs)
	var created []*customer.Customer
	if args.Get(0) != nil {
		created = args.Get(0).([]*customer.Customer)
	}
	var failures []string
	if args.Get(1) != nil {
		failures = args.Get(1).([]string)
	}
	return created, failures, args.Error(2)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	var cust *customer.Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*customer.Customer)
	}
	return cust, args.Error(1)
}

func (m *MockCustomerService) GetCustomerByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	args := m.Called(ctx, email)
	var cust *customer.Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*customer.Customer)
	}
	return cust, args.Error(1)
}

func (m *MockCustomerService) ListCustomers(ctx context.Context, filter customer.ListFilter) ([]*customer.Customer, error) {
	args := m.Called(ctx, filter)
	var customers []*customer.Customer
	if args.Get(0) != nil {
		customers = args.Get(0).([]*customer.Customer)
	}
	return customers, args.Error(1)
}

func (m *MockCustomerService) UpdateCustomer(ctx context.Context, customerID int64, name, email, phone string) (*customer.Customer, error) {
	args := m.Called(ctx, customerID, name, email, phone)
	var cust *customer.Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*customer.Customer)
	}
	return cust, args.Error(1)
}

func (m *MockCustomerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func (m *MockCustomerService) PurgeInactive(ctx context.Context, now time.Time, threshold time.Duration) (int64, error) {
	args := m.Called(ctx, now, threshold)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerService) CountInactive(ctx context.Context, now time.Time, threshold time.Duration) (int64, error) {
	args := m.Called(ctx, now, threshold)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerService) CountCustomers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var _ customer.CustomerService = (*MockCustomerService)(nil)

func newCleanupJob(t *testing.T) (*MockCustomerService, *batch.CleanupJob, string) {
	t.Helper()
	mockCustomerService := new(MockCustomerService)
	logPath := filepath.Join(t.TempDir(), "customer_cleanup_log.txt")
	job := batch.NewCleanupJob(mockCustomerService, joblog.NewAppender(logPath), 365*24*time.Hour, testLogger)
	return mockCustomerService, job, logPath
}

func TestCleanupJobRun(t *testing.T) {
	ctx := context.Background()

	t.Run("appends deletion count line", func(t *testing.T) {
		mockCustomerService, job, logPath := newCleanupJob(t)
		now := time.Date(2026, time.March, 1, 2, 0, 0, 0, time.UTC)
		mockCustomerService.On("PurgeInactive", ctx, now, 365*24*time.Hour).Return(int64(2), nil)

		err := job.RunAt(ctx, now)
		assert.NoError(t, err)

		content, readErr := os.ReadFile(logPath)
		assert.NoError(t, readErr)
		assert.Equal(t, "2026-03-01 02:00:00 - Deleted customers: 2\n", string(content))
		mockCustomerService.AssertExpectations(t)
	})

	t.Run("immediate rerun logs zero", func(t *testing.T) {
		mockCustomerService, job, logPath := newCleanupJob(t)
		now := time.Date(2026, time.March, 1, 2, 0, 0, 0, time.UTC)
		mockCustomerService.On("PurgeInactive", ctx, now, 365*24*time.Hour).Return(int64(2), nil).Once()
		mockCustomerService.On("PurgeInactive", ctx, now, 365*24*time.Hour).Return(int64(0), nil).Once()

		assert.NoError(t, job.RunAt(ctx, now))
		assert.NoError(t, job.RunAt(ctx, now))

		content, readErr := os.ReadFile(logPath)
		assert.NoError(t, readErr)
		assert.Equal(t,
			"2026-03-01 02:00:00 - Deleted customers: 2\n2026-03-01 02:00:00 - Deleted customers: 0\n",
			string(content))
		mockCustomerService.AssertExpectations(t)
	})

	t.Run("handles purge failure", func(t *testing.T) {
		mockCustomerService, job, logPath := newCleanupJob(t)
		now := time.Date(2026, time.March, 1, 2, 0, 0, 0, time.UTC)
		mockCustomerService.On("PurgeInactive", ctx, now, 365*24*time.Hour).Return(int64(0), errors.New("database error"))

		err := job.RunAt(ctx, now)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot run cleanup job")

		_, statErr := os.Stat(logPath)
		assert.True(t, os.IsNotExist(statErr))
		mockCustomerService.AssertExpectations(t)
	})
}
