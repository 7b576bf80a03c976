package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"pharmahub/internal/delivery/http/middleware"
	"pharmahub/internal/delivery/http/response"
	"pharmahub/internal/domain/entity"
	"pharmahub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// CatalogHandlerParams holds dependencies for CatalogHandler, injected by Fx.
type CatalogHandlerParams struct {
	fx.In

	CatalogUC usecase.CatalogUsecase
	Logger    *slog.Logger
}

// CatalogHandler holds dependencies for product management and the public
// catalog view.
type CatalogHandler struct {
	catalogUC usecase.CatalogUsecase
	logger    *slog.Logger
}

// NewCatalogHandler is the constructor for CatalogHandler.
func NewCatalogHandler(params CatalogHandlerParams) *CatalogHandler {
	return &CatalogHandler{
		catalogUC: params.CatalogUC,
		logger:    params.Logger,
	}
}

// CreateProductRequest is the request body for listing a new product.
type CreateProductRequest struct {
	Name          string     `json:"name" validate:"required"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category" validate:"required"`
	PriceCents    int64      `json:"price_cents" validate:"required"`
	StockQuantity int        `json:"stock_quantity"`
	IsActive      bool       `json:"is_active"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
}

// UpdateProductRequest is a partial product update. Absent fields are left
// untouched.
type UpdateProductRequest struct {
	Name          *string    `json:"name,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Category      *string    `json:"category,omitempty"`
	PriceCents    *int64     `json:"price_cents,omitempty"`
	StockQuantity *int       `json:"stock_quantity,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
}

// CreateProduct lists a new product under the calling owner's pharmacy.
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid product input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	product, err := h.catalogUC.CreateProduct(c.Request().Context(), userID, usecase.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Category:      entity.ProductCategory(req.Category),
		PriceCents:    req.PriceCents,
		StockQuantity: req.StockQuantity,
		IsActive:      req.IsActive,
		ExpiryDate:    req.ExpiryDate,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newProductResponse(product), "Product created successfully")
}

// UpdateProduct applies a partial update to one of the owner's products.
func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid product ID")
	}

	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid product input")
	}

	input := usecase.UpdateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		PriceCents:    req.PriceCents,
		StockQuantity: req.StockQuantity,
		IsActive:      req.IsActive,
		ExpiryDate:    req.ExpiryDate,
	}
	if req.Category != nil {
		category := entity.ProductCategory(*req.Category)
		input.Category = &category
	}

	product, err := h.catalogUC.UpdateProduct(c.Request().Context(), userID, productID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newProductResponse(product), "Product updated successfully")
}

// DeleteProduct removes one of the owner's products from the catalog.
func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid product ID")
	}

	if err := h.catalogUC.DeleteProduct(c.Request().Context(), userID, productID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Product deleted"}, "Product deleted successfully")
}

// ListMyProducts returns every product of the owner's pharmacy, including
// inactive ones.
func (h *CatalogHandler) ListMyProducts(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	products, err := h.catalogUC.ListMyProducts(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newProductResponses(products), "Products retrieved successfully")
}

// BrowseCatalog lists active products for customers, filtered by optional
// category and pharmacy query parameters.
func (h *CatalogHandler) BrowseCatalog(c echo.Context) error {
	input := usecase.BrowseCatalogInput{}

	if raw := c.QueryParam("category"); raw != "" {
		category := entity.ProductCategory(raw)
		input.Category = &category
	}

	if raw := c.QueryParam("pharmacy_id"); raw != "" {
		pharmacyID, err := uuid.Parse(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_ID", "Invalid pharmacy ID")
		}
		input.PharmacyID = &pharmacyID
	}

	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid page number")
		}
		input.Page = page
	}

	if raw := c.QueryParam("page_size"); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid page size")
		}
		input.PageSize = pageSize
	}

	products, err := h.catalogUC.BrowseCatalog(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newProductResponses(products), "Catalog retrieved successfully")
}

// GetProduct returns one product by ID.
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid product ID")
	}

	product, err := h.catalogUC.GetProduct(c.Request().Context(), productID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newProductResponse(product), "Product retrieved successfully")
}
