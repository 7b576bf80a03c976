package repository

import (
	"context"
	"errors"

	"pharmahub/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for product persistence.
var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned when a conditional stock decrement
	// matches no row, i.e. the remaining stock is below the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// CatalogFilter narrows the customer-facing catalog listing.
// The zero value lists every active product.
type CatalogFilter struct {
	Category   *entity.ProductCategory // Restrict to one category.
	PharmacyID *uuid.UUID              // Restrict to one pharmacy's products.
	Limit      int                     // Page size; the implementation applies a default when zero.
	Offset     int                     // Page offset.
}

// ProductRepository defines the standard operations for product persistence.
type ProductRepository interface {
	// Create persists a new product.
	Create(ctx context.Context, product *entity.Product) error

	// FindByID retrieves a single product by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// FindByPharmacy lists all products of one pharmacy, including inactive
	// ones. This is the owner's management view.
	FindByPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]*entity.Product, error)

	// FindActive lists products visible to customers. The only visibility
	// gate is is_active: stock level and pharmacy verification status are
	// deliberately not part of this filter.
	FindActive(ctx context.Context, filter CatalogFilter) ([]*entity.Product, error)

	// Update modifies an existing product.
	Update(ctx context.Context, product *entity.Product) error

	// Delete removes a product.
	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementStock atomically reduces the stock of a product by quantity,
	// guarded by stock_quantity >= quantity in the same statement. Returns
	// ErrInsufficientStock when the guard matches no row, so two concurrent
	// checkouts can never both take the last unit.
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error
}
