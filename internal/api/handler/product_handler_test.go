package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-engine/internal/api/handler/dto"
	"crm-engine/internal/domain/product"
	"crm-engine/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, name, description string, price decimal.Decimal, stock int32) (*product.Product, error) {
	args := m.Called(ctx, name, description, price, stock)
	if created, ok := args.Get(0).(*product.Product); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, productID int64) (*product.Product, error) {
	args := m.Called(ctx, productID)
	if found, ok := args.Get(0).(*product.Product); ok {
		return found, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) GetProductsByIDs(ctx context.Context, productIDs []int64) ([]*product.Product, error) {
	args := m.Called(ctx, productIDs)
	if products, ok := args.Get(0).([]*product.Product); ok {
		return products, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	args := m.Called(ctx, filter)
	if products, ok := args.Get(0).([]*product.Product); ok {
		return products, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) RestockLowStock(ctx context.Context, threshold, increment int32) ([]*product.Product, error) {
	args := m.Called(ctx, threshold, increment)
	if products, ok := args.Get(0).([]*product.Product); ok {
		return products, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestProductHandlerCreateProduct(t *testing.T) {
	mockService := new(MockProductService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewProductHandler(mockService, logger)

	t.Run("successfully creates product", func(t *testing.T) {
		mockProduct := &product.Product{
			ProductID: 1,
			Name:      "Keyboard",
			Price:     decimal.RequireFromString("49.90"),
			Stock:     25,
		}
		mockService.On("CreateProduct", mock.Anything, "Keyboard", "", decimal.RequireFromString("49.90"), int32(25)).Return(mockProduct, nil)

		body := []byte(`{"name":"Keyboard","price":"49.90","stock":25}`)
		req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.CreateProduct(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.ProductResponse
		err := json.NewDecoder(rec.Body).Decode(&resp)
		assert.NoError(t, err)
		assert.Equal(t, "1", resp.ProductID)
		assert.Equal(t, "49.90", resp.Price)
		assert.Equal(t, int32(25), resp.Stock)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		body := []byte(`{"name":"Keyboard","price":"0","stock":25}`)
		req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.CreateProduct(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "CreateProduct")
	})

	t.Run("rejects malformed price", func(t *testing.T) {
		body := []byte(`{"name":"Keyboard","price":"cheap","stock":25}`)
		req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.CreateProduct(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProductHandlerGetProduct(t *testing.T) {
	mockService := new(MockProductService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewProductHandler(mockService, logger)

	t.Run("successfully retrieves product", func(t *testing.T) {
		mockProduct := &product.Product{
			ProductID: 42,
			Name:      "Mouse",
			Price:     decimal.RequireFromString("19.99"),
			Stock:     3,
		}
		mockService.On("GetProduct", mock.Anything, int64(42)).Return(mockProduct, nil)

		req := httptest.NewRequest(http.MethodGet, "/products/42", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, &chi.Context{
			URLParams: chi.RouteParams{Keys: []string{"productID"}, Values: []string{"42"}},
		}))
		rec := httptest.NewRecorder()

		handler.GetProduct(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.ProductResponse
		err := json.NewDecoder(rec.Body).Decode(&resp)
		assert.NoError(t, err)
		assert.Equal(t, "42", resp.ProductID)
		assert.Equal(t, "19.99", resp.Price)
		mockService.AssertExpectations(t)
	})

	t.Run("returns error when product not found", func(t *testing.T) {
		mockService.On("GetProduct", mock.Anything, int64(7)).Return((*product.Product)(nil), apperrors.ErrNotFound)

		req := httptest.NewRequest(http.MethodGet, "/products/7", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, &chi.Context{
			URLParams: chi.RouteParams{Keys: []string{"productID"}, Values: []string{"7"}},
		}))
		rec := httptest.NewRecorder()

		handler.GetProduct(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestProductHandlerListProducts(t *testing.T) {
	mockService := new(MockProductService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewProductHandler(mockService, logger)

	t.Run("filters low stock products", func(t *testing.T) {
		expectedFilter := product.ListFilter{LowStock: true}
		mockProducts := []*product.Product{
			{ProductID: 1, Name: "Keyboard", Price: decimal.NewFromInt(30), Stock: 4},
		}
		mockService.On("ListProducts", mock.Anything, expectedFilter).Return(mockProducts, nil)

		req := httptest.NewRequest(http.MethodGet, "/products?lowStock=true", nil)
		rec := httptest.NewRecorder()

		handler.ListProducts(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []dto.ProductResponse
		err := json.NewDecoder(rec.Body).Decode(&resp)
		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, int32(4), resp[0].Stock)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects malformed lowStock flag", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/products?lowStock=maybe", nil)
		rec := httptest.NewRecorder()

		handler.ListProducts(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "ListProducts")
	})

	t.Run("filters by price range", func(t *testing.T) {
		expectedFilter := product.ListFilter{
			PriceMin: decimal.RequireFromString("10"),
			PriceMax: decimal.RequireFromString("50"),
		}
		mockService.On("ListProducts", mock.Anything, expectedFilter).Return([]*product.Product{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/products?priceMin=10&priceMax=50", nil)
		rec := httptest.NewRecorder()

		handler.ListProducts(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("filters by stock range", func(t *testing.T) {
		expectedFilter := product.ListFilter{StockMin: 5, StockMax: 20}
		mockService.On("ListProducts", mock.Anything, expectedFilter).Return([]*product.Product{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/products?stockMin=5&stockMax=20", nil)
		rec := httptest.NewRecorder()

		handler.ListProducts(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects negative stockMin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/products?stockMin=-3", nil)
		rec := httptest.NewRecorder()

		handler.ListProducts(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
