// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"time"

	"pharmahub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CreateProductInput defines the data required to list a new product.
type CreateProductInput struct {
	Name          string
	Description   string
	Category      entity.ProductCategory
	PriceCents    int64
	StockQuantity int
	IsActive      bool
	ExpiryDate    *time.Time
}

// UpdateProductInput defines a partial product update. Nil fields are left untouched.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Category      *entity.ProductCategory
	PriceCents    *int64
	StockQuantity *int
	IsActive      *bool
	ExpiryDate    *time.Time
}

// BrowseCatalogInput narrows the customer-facing catalog listing.
type BrowseCatalogInput struct {
	Category   *entity.ProductCategory
	PharmacyID *uuid.UUID
	Page       int
	PageSize   int
}

// CatalogUsecase defines the interface for product catalog operations, both
// the pharmacy's management view and the customer's browsing view.
//
// Every mutation requires the caller to own an APPROVED pharmacy: submission
// alone does not unlock selling, and ownership is checked so one pharmacy can
// never touch another's products.
type CatalogUsecase interface {
	CreateProduct(ctx context.Context, ownerUserID uuid.UUID, input CreateProductInput) (*entity.Product, error)
	UpdateProduct(ctx context.Context, ownerUserID uuid.UUID, productID uuid.UUID, input UpdateProductInput) (*entity.Product, error)
	DeleteProduct(ctx context.Context, ownerUserID uuid.UUID, productID uuid.UUID) error
	ListMyProducts(ctx context.Context, ownerUserID uuid.UUID) ([]*entity.Product, error)

	// BrowseCatalog lists active products. Visibility depends on is_active
	// only: out-of-stock products stay listed and the pharmacy's verification
	// status is not re-checked at read time.
	BrowseCatalog(ctx context.Context, input BrowseCatalogInput) ([]*entity.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*entity.Product, error)
}
