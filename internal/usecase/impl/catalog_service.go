package impl

import (
	"context"
	"log/slog"

	"pharmahub/config"
	deliverycontext "pharmahub/internal/delivery/context"
	"pharmahub/internal/domain/entity"
	domainerrors "pharmahub/internal/domain/errors"
	"pharmahub/internal/domain/repository"
	"pharmahub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultCatalogPageSize = 20
	maxCatalogPageSize     = 100
)

// catalogService implements the CatalogUsecase interface.
type catalogService struct {
	txManager       repository.TransactionManager
	pharmacyRepo    repository.PharmacyRepository
	productRepo     repository.ProductRepository
	defaultPageSize int
	maxPageSize     int
	logger          *slog.Logger
}

// CatalogServiceParams holds dependencies for catalogService, injected by Fx.
type CatalogServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	PharmacyRepo repository.PharmacyRepository
	ProductRepo  repository.ProductRepository
	Config       *config.Config
	Logger       *slog.Logger
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(params CatalogServiceParams) usecase.CatalogUsecase {
	defaultPageSize := defaultCatalogPageSize
	maxPageSize := maxCatalogPageSize
	if params.Config != nil && params.Config.Catalog != nil {
		if params.Config.Catalog.DefaultPageSize > 0 {
			defaultPageSize = params.Config.Catalog.DefaultPageSize
		}
		if params.Config.Catalog.MaxPageSize > 0 {
			maxPageSize = params.Config.Catalog.MaxPageSize
		}
	}

	return &catalogService{
		txManager:       params.TxManager,
		pharmacyRepo:    params.PharmacyRepo,
		productRepo:     params.ProductRepo,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		logger:          params.Logger,
	}
}

func (srv *catalogService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// loadApprovedPharmacy resolves the caller's pharmacy and enforces the
// verification gate: only an approved pharmacy may manage products.
func (srv *catalogService) loadApprovedPharmacy(ctx context.Context, ownerUserID uuid.UUID) (*entity.Pharmacy, error) {
	pharmacy, err := srv.pharmacyRepo.FindByOwner(ctx, ownerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrPharmacyNotFound) {
			return nil, errors.Wrap(domainerrors.ErrPharmacyNotFound, "no pharmacy registered for this account")
		}

		return nil, errors.Wrap(err, "failed to find pharmacy by owner")
	}

	if !pharmacy.IsApproved() {
		return nil, errors.Wrap(domainerrors.ErrPharmacyNotVerified, "pharmacy is not approved")
	}

	return pharmacy, nil
}

// loadOwnedProduct resolves a product and verifies it belongs to the given pharmacy.
func (srv *catalogService) loadOwnedProduct(ctx context.Context, pharmacyID, productID uuid.UUID) (*entity.Product, error) {
	product, err := srv.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, errors.Wrap(domainerrors.ErrProductNotFound, "product not found")
		}

		return nil, errors.Wrap(err, "failed to find product")
	}

	if product.PharmacyID != pharmacyID {
		return nil, errors.Wrap(domainerrors.ErrOwnershipViolation, "product belongs to another pharmacy")
	}

	return product, nil
}

// CreateProduct lists a new product under the caller's approved pharmacy.
func (srv *catalogService) CreateProduct(ctx context.Context, ownerUserID uuid.UUID, input usecase.CreateProductInput) (*entity.Product, error) {
	srv.log(ctx).Info("Creating product", slog.Any("ownerUserID", ownerUserID), slog.String("name", input.Name))

	pharmacy, err := srv.loadApprovedPharmacy(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	if !input.Category.IsValid() {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "invalid product category")
	}
	if input.PriceCents <= 0 {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "price must be positive")
	}
	if input.StockQuantity < 0 {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "stock quantity must not be negative")
	}

	product := &entity.Product{
		PharmacyID:    pharmacy.ID,
		Name:          input.Name,
		Description:   input.Description,
		Category:      input.Category,
		PriceCents:    input.PriceCents,
		StockQuantity: input.StockQuantity,
		IsActive:      input.IsActive,
		ExpiryDate:    input.ExpiryDate,
	}
	if err := srv.productRepo.Create(ctx, product); err != nil {
		srv.log(ctx).Error("Failed to create product", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create product")
	}

	return product, nil
}

// UpdateProduct applies a partial update to a product the caller's pharmacy owns.
func (srv *catalogService) UpdateProduct(ctx context.Context, ownerUserID, productID uuid.UUID, input usecase.UpdateProductInput) (*entity.Product, error) {
	srv.log(ctx).Info("Updating product", slog.Any("productID", productID))

	pharmacy, err := srv.loadApprovedPharmacy(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	var updated *entity.Product
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		productRepo := repoFactory.ProductRepo()

		product, err := productRepo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return errors.Wrap(domainerrors.ErrProductNotFound, "product not found")
			}

			return errors.Wrap(err, "failed to find product")
		}
		if product.PharmacyID != pharmacy.ID {
			return errors.Wrap(domainerrors.ErrOwnershipViolation, "product belongs to another pharmacy")
		}

		if input.Name != nil {
			product.Name = *input.Name
		}
		if input.Description != nil {
			product.Description = *input.Description
		}
		if input.Category != nil {
			if !input.Category.IsValid() {
				return errors.Wrap(domainerrors.ErrValidationFailed, "invalid product category")
			}
			product.Category = *input.Category
		}
		if input.PriceCents != nil {
			if *input.PriceCents <= 0 {
				return errors.Wrap(domainerrors.ErrValidationFailed, "price must be positive")
			}
			product.PriceCents = *input.PriceCents
		}
		if input.StockQuantity != nil {
			if *input.StockQuantity < 0 {
				return errors.Wrap(domainerrors.ErrValidationFailed, "stock quantity must not be negative")
			}
			product.StockQuantity = *input.StockQuantity
		}
		if input.IsActive != nil {
			product.IsActive = *input.IsActive
		}
		if input.ExpiryDate != nil {
			product.ExpiryDate = input.ExpiryDate
		}

		if err := productRepo.Update(ctx, product); err != nil {
			return errors.Wrap(err, "failed to update product")
		}
		updated = product

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute product update transaction")
	}

	return updated, nil
}

// DeleteProduct removes a product the caller's pharmacy owns.
func (srv *catalogService) DeleteProduct(ctx context.Context, ownerUserID, productID uuid.UUID) error {
	srv.log(ctx).Info("Deleting product", slog.Any("productID", productID))

	pharmacy, err := srv.loadApprovedPharmacy(ctx, ownerUserID)
	if err != nil {
		return err
	}

	if _, err := srv.loadOwnedProduct(ctx, pharmacy.ID, productID); err != nil {
		return err
	}

	if err := srv.productRepo.Delete(ctx, productID); err != nil {
		return errors.Wrap(err, "failed to delete product")
	}

	return nil
}

// ListMyProducts returns the owner's full management view, inactive products included.
// Listing does not require approval: a pending pharmacy can still see its own records.
func (srv *catalogService) ListMyProducts(ctx context.Context, ownerUserID uuid.UUID) ([]*entity.Product, error) {
	pharmacy, err := srv.pharmacyRepo.FindByOwner(ctx, ownerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrPharmacyNotFound) {
			return nil, errors.Wrap(domainerrors.ErrPharmacyNotFound, "no pharmacy registered for this account")
		}

		return nil, errors.Wrap(err, "failed to find pharmacy by owner")
	}

	products, err := srv.productRepo.FindByPharmacy(ctx, pharmacy.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pharmacy products")
	}

	return products, nil
}

// BrowseCatalog lists active products for customers. Out-of-stock products
// stay visible so customers can see listings that may restock.
func (srv *catalogService) BrowseCatalog(ctx context.Context, input usecase.BrowseCatalogInput) ([]*entity.Product, error) {
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = srv.defaultPageSize
	}
	if pageSize > srv.maxPageSize {
		pageSize = srv.maxPageSize
	}
	page := input.Page
	if page < 1 {
		page = 1
	}

	if input.Category != nil && !input.Category.IsValid() {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "invalid product category")
	}

	products, err := srv.productRepo.FindActive(ctx, repository.CatalogFilter{
		Category:   input.Category,
		PharmacyID: input.PharmacyID,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to browse catalog")
	}

	return products, nil
}

// GetProduct returns a product by ID.
func (srv *catalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*entity.Product, error) {
	product, err := srv.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, errors.Wrap(domainerrors.ErrProductNotFound, "product not found")
		}

		return nil, errors.Wrap(err, "failed to find product")
	}

	return product, nil
}
