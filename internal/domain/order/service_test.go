package order

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"crm-engine/internal/domain/customer"
	"crm-engine/internal/domain/product"
	"crm-engine/internal/event"
	"crm-engine/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

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
	var rowErrors []string
	if args.Get(1) != nil {
		rowErrors = args.Get(1).([]string)
	}
	return created, rowErrors, args.Error(2)
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

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, name, description string, price decimal.Decimal, stock int32) (*product.Product, error) {
	args := m.Called(ctx, name, description, price, stock)
	var prod *product.Product
	if args.Get(0) != nil {
		prod = args.Get(0).(*product.Product)
	}
	return prod, args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, productID int64) (*product.Product, error) {
	args := m.Called(ctx, productID)
	var prod *product.Product
	if args.Get(0) != nil {
		prod = args.Get(0).(*product.Product)
	}
	return prod, args.Error(1)
}

func (m *MockProductService) GetProductsByIDs(ctx context.Context, productIDs []int64) ([]*product.Product, error) {
	args := m.Called(ctx, productIDs)
	var products []*product.Product
	if args.Get(0) != nil {
		products = args.Get(0).([]*product.Product)
	}
	return products, args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	args := m.Called(ctx, filter)
	var products []*product.Product
	if args.Get(0) != nil {
		products = args.Get(0).([]*product.Product)
	}
	return products, args.Error(1)
}

func (m *MockProductService) RestockLowStock(ctx context.Context, threshold, increment int32) ([]*product.Product, error) {
	args := m.Called(ctx, threshold, increment)
	var products []*product.Product
	if args.Get(0) != nil {
		products = args.Get(0).([]*product.Product)
	}
	return products, args.Error(1)
}

var _ product.ProductService = (*MockProductService)(nil)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishCustomerCreated(ctx context.Context, evt event.CustomerCreatedEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockPublisher) PublishCustomersPurged(ctx context.Context, evt event.CustomersPurgedEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockPublisher) PublishOrderCreated(ctx context.Context, evt event.OrderCreatedEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockPublisher) PublishReportGenerated(ctx context.Context, evt event.ReportGeneratedEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

var _ event.EventPublisher = (*MockPublisher)(nil)

func TestCreateOrder(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomers := new(MockCustomerService)
	mockProducts := new(MockProductService)
	service := NewOrderService(mockRepo, mockCustomers, mockProducts, nil, logger)

	cust := &customer.Customer{CustomerID: 7, Name: "Alice Smith", Email: "alice@example.com"}
	products := []*product.Product{
		{ProductID: 1, Name: "Keyboard", Price: decimal.NewFromFloat(49.90), Stock: 12},
		{ProductID: 2, Name: "Mouse", Price: decimal.NewFromFloat(19.10), Stock: 30},
	}
	orderDate := time.Date(2026, time.February, 10, 9, 30, 0, 0, time.UTC)

	mockCustomers.On("GetCustomer", mock.Anything, int64(7)).Return(cust, nil)
	mockProducts.On("GetProductsByIDs", mock.Anything, []int64{1, 2}).Return(products, nil)
	mockRepo.On("CreateOrder", mock.Anything, mock.MatchedBy(func(ord *Order) bool {
		return ord.CustomerID == 7 &&
			len(ord.Products) == 2 &&
			ord.TotalAmount.Equal(decimal.NewFromFloat(69.00)) &&
			ord.Status == StatusPending &&
			ord.OrderDate.Equal(orderDate)
	})).Return(func(ctx context.Context, ord *Order) *Order {
		created := *ord
		created.OrderID = 42
		return &created
	}, nil)

	created, err := service.CreateOrder(context.Background(), 7, []int64{1, 2}, orderDate)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), created.OrderID)
	assert.Equal(t, StatusPending, created.Status)
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromFloat(69.00)))
	assert.Equal(t, []int64{1, 2}, created.ProductIDs())
	mockRepo.AssertExpectations(t)
	mockCustomers.AssertExpectations(t)
	mockProducts.AssertExpectations(t)
}

func TestCreateOrderNoProducts(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomers := new(MockCustomerService)
	mockProducts := new(MockProductService)
	service := NewOrderService(mockRepo, mockCustomers, mockProducts, nil, logger)

	created, err := service.CreateOrder(context.Background(), 7, nil, time.Time{})

	assert.Nil(t, created)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "order must contain at least one product")
	mockCustomers.AssertNotCalled(t, "GetCustomer", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreateOrderCustomerMissing(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomers := new(MockCustomerService)
	mockProducts := new(MockProductService)
	service := NewOrderService(mockRepo, mockCustomers, mockProducts, nil, logger)

	mockCustomers.On("GetCustomer", mock.Anything, int64(99)).Return(nil, customer.ErrNotFound)

	created, err := service.CreateOrder(context.Background(), 99, []int64{1}, time.Time{})

	assert.Nil(t, created)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "customer with ID 99 does not exist")
	mockProducts.AssertNotCalled(t, "GetProductsByIDs", mock.Anything, mock.Anything)
}

func TestCreateOrderInvalidProducts(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomers := new(MockCustomerService)
	mockProducts := new(MockProductService)
	service := NewOrderService(mockRepo, mockCustomers, mockProducts, nil, logger)

	cust := &customer.Customer{CustomerID: 7, Name: "Alice Smith", Email: "alice@example.com"}
	mockCustomers.On("GetCustomer", mock.Anything, int64(7)).Return(cust, nil)
	mockProducts.On("GetProductsByIDs", mock.Anything, []int64{42, 99}).
		Return(nil, apperrors.NewValidationError("product_ids", "invalid product ID(s) found: 42, 99"))

	created, err := service.CreateOrder(context.Background(), 7, []int64{42, 99}, time.Time{})

	assert.Nil(t, created)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "invalid product ID(s) found: 42, 99")
	mockRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreateOrderDeduplicatesProducts(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomers := new(MockCustomerService)
	mockProducts := new(MockProductService)
	service := NewOrderService(mockRepo, mockCustomers, mockProducts, nil, logger)

	cust := &customer.Customer{CustomerID: 7, Name: "Alice Smith", Email: "alice@example.com"}
	products := []*product.Product{
		{ProductID: 3, Name: "Webcam", Price: decimal.NewFromFloat(80), Stock: 4},
		{ProductID: 5, Name: "Headset", Price: decimal.NewFromFloat(45), Stock: 9},
	}

	mockCustomers.On("GetCustomer", mock.Anything, int64(7)).Return(cust, nil)
	mockProducts.On("GetProductsByIDs", mock.Anything, []int64{3, 5}).Return(products, nil)
	mockRepo.On("CreateOrder", mock.Anything, mock.Anything).Return(func(ctx context.Context, ord *Order) *Order {
		created := *ord
		created.OrderID = 10
		return &created
	}, nil)

	created, err := service.CreateOrder(context.Background(), 7, []int64{3, 3, 5, 3}, time.Time{})

	assert.NoError(t, err)
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromFloat(125)))
	mockProducts.AssertExpectations(t)
}

func TestCreateOrderDefaultsOrderDate(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomers := new(MockCustomerService)
	mockProducts := new(MockProductService)
	service := NewOrderService(mockRepo, mockCustomers, mockProducts, nil, logger)

	cust := &customer.Customer{CustomerID: 7, Name: "Alice Smith", Email: "alice@example.com"}
	products := []*product.Product{
		{ProductID: 1, Name: "Keyboard", Price: decimal.NewFromFloat(49.90), Stock: 12},
	}

	mockCustomers.On("GetCustomer", mock.Anything, int64(7)).Return(cust, nil)
	mockProducts.On("GetProductsByIDs", mock.Anything, []int64{1}).Return(products, nil)
	mockRepo.On("CreateOrder", mock.Anything, mock.MatchedBy(func(ord *Order) bool {
		return !ord.OrderDate.IsZero()
	})).Return(func(ctx context.Context, ord *Order) *Order {
		return ord
	}, nil)

	_, err := service.CreateOrder(context.Background(), 7, []int64{1}, time.Time{})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCreateOrderRepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomers := new(MockCustomerService)
	mockProducts := new(MockProductService)
	service := NewOrderService(mockRepo, mockCustomers, mockProducts, nil, logger)

	cust := &customer.Customer{CustomerID: 7, Name: "Alice Smith", Email: "alice@example.com"}
	products := []*product.Product{
		{ProductID: 1, Name: "Keyboard", Price: decimal.NewFromFloat(49.90), Stock: 12},
	}

	mockCustomers.On("GetCustomer", mock.Anything, int64(7)).Return(cust, nil)
	mockProducts.On("GetProductsByIDs", mock.Anything, []int64{1}).Return(products, nil)
	mockRepo.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	created, err := service.CreateOrder(context.Background(), 7, []int64{1}, time.Time{})

	assert.Nil(t, created)
	assert.ErrorIs(t, err, apperrors.ErrInternalServer)
}

func TestCreateOrderPublishesEvent(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomers := new(MockCustomerService)
	mockProducts := new(MockProductService)
	mockPub := new(MockPublisher)
	service := NewOrderService(mockRepo, mockCustomers, mockProducts, mockPub, logger)

	cust := &customer.Customer{CustomerID: 7, Name: "Alice Smith", Email: "alice@example.com"}
	products := []*product.Product{
		{ProductID: 1, Name: "Keyboard", Price: decimal.NewFromFloat(10.5), Stock: 12},
	}

	mockCustomers.On("GetCustomer", mock.Anything, int64(7)).Return(cust, nil)
	mockProducts.On("GetProductsByIDs", mock.Anything, []int64{1}).Return(products, nil)
	mockRepo.On("CreateOrder", mock.Anything, mock.Anything).Return(func(ctx context.Context, ord *Order) *Order {
		created := *ord
		created.OrderID = 42
		return &created
	}, nil)
	mockPub.On("PublishOrderCreated", mock.Anything, mock.MatchedBy(func(evt event.OrderCreatedEvent) bool {
		return evt.OrderID == 42 &&
			evt.CustomerID == 7 &&
			len(evt.ProductIDs) == 1 && evt.ProductIDs[0] == 1 &&
			evt.TotalAmount == "10.50" &&
			evt.Status == string(StatusPending) &&
			!evt.Timestamp.IsZero()
	})).Return(nil)

	_, err := service.CreateOrder(context.Background(), 7, []int64{1}, time.Time{})

	assert.NoError(t, err)
	mockPub.AssertExpectations(t)
}

func TestCreateOrderPublishFailureDoesNotFailOrder(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomers := new(MockCustomerService)
	mockProducts := new(MockProductService)
	mockPub := new(MockPublisher)
	service := NewOrderService(mockRepo, mockCustomers, mockProducts, mockPub, logger)

	cust := &customer.Customer{CustomerID: 7, Name: "Alice Smith", Email: "alice@example.com"}
	products := []*product.Product{
		{ProductID: 1, Name: "Keyboard", Price: decimal.NewFromFloat(10.5), Stock: 12},
	}

	mockCustomers.On("GetCustomer", mock.Anything, int64(7)).Return(cust, nil)
	mockProducts.On("GetProductsByIDs", mock.Anything, []int64{1}).Return(products, nil)
	mockRepo.On("CreateOrder", mock.Anything, mock.Anything).Return(func(ctx context.Context, ord *Order) *Order {
		return ord
	}, nil)
	mockPub.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(assert.AnError)

	created, err := service.CreateOrder(context.Background(), 7, []int64{1}, time.Time{})

	assert.NoError(t, err)
	assert.NotNil(t, created)
}

func TestGetOrder(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewOrderService(mockRepo, new(MockCustomerService), new(MockProductService), nil, logger)

	expected := &Order{OrderID: 5, CustomerID: 7, Status: StatusPending}
	mockRepo.On("GetOrderByID", mock.Anything, int64(5)).Return(expected, nil)

	ord, err := service.GetOrder(context.Background(), 5)

	assert.NoError(t, err)
	assert.Equal(t, expected, ord)
}

func TestGetOrderNotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewOrderService(mockRepo, new(MockCustomerService), new(MockProductService), nil, logger)

	mockRepo.On("GetOrderByID", mock.Anything, int64(404)).Return(nil, ErrNotFound)

	ord, err := service.GetOrder(context.Background(), 404)

	assert.Nil(t, ord)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrders(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewOrderService(mockRepo, new(MockCustomerService), new(MockProductService), nil, logger)

	filter := ListFilter{CustomerID: 7, Status: StatusPending}
	expected := []*Order{{OrderID: 1, CustomerID: 7, Status: StatusPending}}
	mockRepo.On("FindAll", mock.Anything, filter).Return(expected, nil)

	orders, err := service.ListOrders(context.Background(), filter)

	assert.NoError(t, err)
	assert.Equal(t, expected, orders)
}

func TestListPendingSince(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewOrderService(mockRepo, new(MockCustomerService), new(MockProductService), nil, logger)

	since := time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC)
	expected := []PendingOrder{
		{OrderID: 3, CustomerEmail: "alice@example.com", OrderDate: since.Add(24 * time.Hour)},
	}
	mockRepo.On("FindPendingSince", mock.Anything, since).Return(expected, nil)

	pending, err := service.ListPendingSince(context.Background(), since)

	assert.NoError(t, err)
	assert.Equal(t, expected, pending)
}

func TestListPendingSinceError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewOrderService(mockRepo, new(MockCustomerService), new(MockProductService), nil, logger)

	mockRepo.On("FindPendingSince", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	pending, err := service.ListPendingSince(context.Background(), time.Now())

	assert.Nil(t, pending)
	assert.ErrorIs(t, err, apperrors.ErrInternalServer)
}

func TestUpdateOrderStatus(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewOrderService(mockRepo, new(MockCustomerService), new(MockProductService), nil, logger)

	pending := &Order{OrderID: 5, CustomerID: 7, Status: StatusPending}
	mockRepo.On("GetOrderByID", mock.Anything, int64(5)).Return(pending, nil)
	mockRepo.On("UpdateStatus", mock.Anything, int64(5), StatusCompleted).Return(nil)

	ord, err := service.UpdateOrderStatus(context.Background(), 5, StatusCompleted)

	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, ord.Status)
	mockRepo.AssertExpectations(t)
}

func TestUpdateOrderStatusAlreadyFinal(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewOrderService(mockRepo, new(MockCustomerService), new(MockProductService), nil, logger)

	completed := &Order{OrderID: 5, CustomerID: 7, Status: StatusCompleted}
	mockRepo.On("GetOrderByID", mock.Anything, int64(5)).Return(completed, nil)

	ord, err := service.UpdateOrderStatus(context.Background(), 5, StatusCancelled)

	assert.Nil(t, ord)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "already COMPLETED")
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrderStatusInvalidTarget(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewOrderService(mockRepo, new(MockCustomerService), new(MockProductService), nil, logger)

	pending := &Order{OrderID: 5, CustomerID: 7, Status: StatusPending}
	mockRepo.On("GetOrderByID", mock.Anything, int64(5)).Return(pending, nil)

	ord, err := service.UpdateOrderStatus(context.Background(), 5, StatusPending)

	assert.Nil(t, ord)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "cannot transition an order to 'PENDING'")
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewOrderService(mockRepo, new(MockCustomerService), new(MockProductService), nil, logger)

	mockRepo.On("GetOrderByID", mock.Anything, int64(404)).Return(nil, ErrNotFound)

	ord, err := service.UpdateOrderStatus(context.Background(), 404, StatusCompleted)

	assert.Nil(t, ord)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCountOrders(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewOrderService(mockRepo, new(MockCustomerService), new(MockProductService), nil, logger)

	mockRepo.On("CountAll", mock.Anything).Return(int64(12), nil)

	count, err := service.CountOrders(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(12), count)
}

func TestTotalRevenue(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewOrderService(mockRepo, new(MockCustomerService), new(MockProductService), nil, logger)

	mockRepo.On("SumTotalAmount", mock.Anything).Return(decimal.NewFromFloat(1234.56), nil)

	revenue, err := service.TotalRevenue(context.Background())

	assert.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.NewFromFloat(1234.56)))
}

func TestTotalRevenueError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewOrderService(mockRepo, new(MockCustomerService), new(MockProductService), nil, logger)

	mockRepo.On("SumTotalAmount", mock.Anything).Return(decimal.Zero, assert.AnError)

	_, err := service.TotalRevenue(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrInternalServer)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("completed")
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)

	status, err = ParseStatus(" PENDING ")
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, status)

	_, err = ParseStatus("shipped")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "'shipped' is not a valid order status")
}

func TestTransitionTo(t *testing.T) {
	ord := &Order{OrderID: 1, Status: StatusPending}

	err := ord.TransitionTo(StatusCompleted)
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, ord.Status)

	err = ord.TransitionTo(StatusCancelled)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	cancelled := &Order{OrderID: 2, Status: StatusPending}
	assert.NoError(t, cancelled.TransitionTo(StatusCancelled))
	assert.Equal(t, StatusCancelled, cancelled.Status)
}
