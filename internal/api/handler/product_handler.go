package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"crm-engine/internal/api/handler/dto"
	"crm-engine/internal/domain/product"
	"crm-engine/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	service product.ProductService
	logger  *slog.Logger
}

func NewProductHandler(s product.ProductService, l *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: s,
		logger:  l.With("component", "ProductHandler"),
	}
}

func getProductIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "productID")
	if idStr == "" {
		return 0, fmt.Errorf("productID not found in URL path")
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// CreateProduct handles the creation of a new product.
//
// @Summary Create a new product
// @Description Creates a product with a name, optional description, price and initial stock level.
// @Tags Products
// @Accept json
// @Produce json
// @Param request body dto.CreateProductRequest true "Product creation request payload"
// @Success 201 {object} dto.ProductResponse "Product successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /products [post]
// @Security BearerAuth
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	createdProduct, err := h.service.CreateProduct(r.Context(), req.Name, req.Description, req.PriceDecimal(), req.Stock)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.NewProductResponse(createdProduct)
	respondJSON(w, http.StatusCreated, resp)
}

// GetProduct retrieves the details of a specific product.
//
// @Summary Retrieve product details
// @Description Retrieves a product by its ID.
// @Tags Products
// @Produce json
// @Param productID path int true "Product ID"
// @Success 200 {object} dto.ProductResponse "Product details successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid product ID"
// @Failure 404 {object} dto.ErrorResponse "Product not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /products/{productID} [get]
// @Security BearerAuth
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := getProductIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	domainProduct, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.NewProductResponse(domainProduct)
	respondJSON(w, http.StatusOK, resp)
}

// ListProducts retrieves products matching the query filters.
//
// @Summary List products
// @Description Retrieves products, optionally filtered by name fragment, price range, stock range or low stock.
// @Tags Products
// @Produce json
// @Param name query string false "Case-insensitive name fragment"
// @Param priceMin query string false "Minimum price"
// @Param priceMax query string false "Maximum price"
// @Param stockMin query int false "Minimum stock level"
// @Param stockMax query int false "Maximum stock level"
// @Param lowStock query bool false "Only products with stock below 10"
// @Success 200 {array} dto.ProductResponse "List of products"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /products [get]
// @Security BearerAuth
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilterFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	products, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewProductResponses(products))
}

func productFilterFromQuery(r *http.Request) (product.ListFilter, error) {
	var filter product.ListFilter
	query := r.URL.Query()

	filter.Name = query.Get("name")

	if v := query.Get("priceMin"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid priceMin: %s", apperrors.ErrInvalidArgument, v)
		}
		filter.PriceMin = d
	}
	if v := query.Get("priceMax"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid priceMax: %s", apperrors.ErrInvalidArgument, v)
		}
		filter.PriceMax = d
	}
	if v := query.Get("stockMin"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("%w: invalid stockMin: %s", apperrors.ErrInvalidArgument, v)
		}
		filter.StockMin = int32(n)
	}
	if v := query.Get("stockMax"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("%w: invalid stockMax: %s", apperrors.ErrInvalidArgument, v)
		}
		filter.StockMax = int32(n)
	}
	if v := query.Get("lowStock"); v != "" {
		lowStock, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid lowStock: %s", apperrors.ErrInvalidArgument, v)
		}
		filter.LowStock = lowStock
	}

	return filter, nil
}
