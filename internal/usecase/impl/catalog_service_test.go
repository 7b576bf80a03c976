package impl

import (
	"context"
	"testing"

	"pharmahub/config"
	"pharmahub/internal/domain/entity"
	domainerrors "pharmahub/internal/domain/errors"
	"pharmahub/internal/domain/repository"
	mockRepo "pharmahub/internal/mocks/repository"
	"pharmahub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogServiceFixtures struct {
	service      usecase.CatalogUsecase
	txManager    *mockRepo.MockTransactionManager
	pharmacyRepo *mockRepo.MockPharmacyRepository
	productRepo  *mockRepo.MockProductRepository
}

func createTestCatalogService(t *testing.T) catalogServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	pharmacyRepo := mockRepo.NewMockPharmacyRepository(t)
	productRepo := mockRepo.NewMockProductRepository(t)

	cfg := newTestConfig(0)
	cfg.Catalog = &config.CatalogConfig{DefaultPageSize: 20, MaxPageSize: 100}

	svc := NewCatalogService(CatalogServiceParams{
		TxManager:    txManager,
		PharmacyRepo: pharmacyRepo,
		ProductRepo:  productRepo,
		Config:       cfg,
		Logger:       newDiscardLogger(),
	})

	return catalogServiceFixtures{
		service:      svc,
		txManager:    txManager,
		pharmacyRepo: pharmacyRepo,
		productRepo:  productRepo,
	}
}

func approvedPharmacy(ownerID uuid.UUID) *entity.Pharmacy {
	return &entity.Pharmacy{
		ID:                 uuid.New(),
		OwnerUserID:        ownerID,
		Name:               "Corner Pharmacy",
		VerificationStatus: entity.VerificationApproved,
	}
}

func TestCatalogService_CreateProduct_Success(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	pharmacy := approvedPharmacy(ownerID)
	input := usecase.CreateProductInput{
		Name:          "Vitamin C 500mg",
		Category:      entity.CategorySupplements,
		PriceCents:    500,
		StockQuantity: 10,
		IsActive:      true,
	}

	fx.pharmacyRepo.EXPECT().FindByOwner(ctx, ownerID).Return(pharmacy, nil)
	fx.productRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.Product")).
		Run(func(ctx context.Context, product *entity.Product) {
			product.ID = uuid.New()
		}).
		Return(nil)

	product, err := fx.service.CreateProduct(ctx, ownerID, input)

	require.NoError(t, err)
	assert.Equal(t, pharmacy.ID, product.PharmacyID)
	assert.Equal(t, int64(500), product.PriceCents)
}

func TestCatalogService_CreateProduct_PendingPharmacyRejected(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	pending := &entity.Pharmacy{
		ID:                 uuid.New(),
		OwnerUserID:        ownerID,
		VerificationStatus: entity.VerificationPending,
	}

	fx.pharmacyRepo.EXPECT().FindByOwner(ctx, ownerID).Return(pending, nil)

	product, err := fx.service.CreateProduct(ctx, ownerID, usecase.CreateProductInput{
		Name:       "Vitamin C 500mg",
		Category:   entity.CategorySupplements,
		PriceCents: 500,
	})

	assert.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, domainerrors.ErrPharmacyNotVerified))
}

func TestCatalogService_CreateProduct_NoPharmacy(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()
	ownerID := uuid.New()

	fx.pharmacyRepo.EXPECT().
		FindByOwner(ctx, ownerID).
		Return(nil, repository.ErrPharmacyNotFound)

	product, err := fx.service.CreateProduct(ctx, ownerID, usecase.CreateProductInput{
		Name:       "Vitamin C 500mg",
		Category:   entity.CategorySupplements,
		PriceCents: 500,
	})

	assert.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, domainerrors.ErrPharmacyNotFound))
}

func TestCatalogService_UpdateProduct_OwnershipViolation(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	pharmacy := approvedPharmacy(ownerID)
	productID := uuid.New()

	fx.pharmacyRepo.EXPECT().FindByOwner(ctx, ownerID).Return(pharmacy, nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockProductRepo := mockRepo.NewMockProductRepository(t)

			mockFactory.EXPECT().ProductRepo().Return(mockProductRepo)
			mockProductRepo.EXPECT().
				FindByID(ctx, productID).
				Return(&entity.Product{
					ID:         productID,
					PharmacyID: uuid.New(), // someone else's product
				}, nil)

			return fn(mockFactory)
		})

	newName := "Renamed"
	product, err := fx.service.UpdateProduct(ctx, ownerID, productID, usecase.UpdateProductInput{Name: &newName})

	assert.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, domainerrors.ErrOwnershipViolation))
}

func TestCatalogService_UpdateProduct_PartialFields(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	pharmacy := approvedPharmacy(ownerID)
	productID := uuid.New()

	fx.pharmacyRepo.EXPECT().FindByOwner(ctx, ownerID).Return(pharmacy, nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockProductRepo := mockRepo.NewMockProductRepository(t)

			mockFactory.EXPECT().ProductRepo().Return(mockProductRepo)
			mockProductRepo.EXPECT().
				FindByID(ctx, productID).
				Return(&entity.Product{
					ID:            productID,
					PharmacyID:    pharmacy.ID,
					Name:          "Vitamin C 500mg",
					PriceCents:    500,
					StockQuantity: 10,
					IsActive:      true,
				}, nil)
			mockProductRepo.EXPECT().
				Update(ctx, mock.AnythingOfType("*entity.Product")).
				Return(nil)

			return fn(mockFactory)
		})

	newPrice := int64(650)
	product, err := fx.service.UpdateProduct(ctx, ownerID, productID, usecase.UpdateProductInput{PriceCents: &newPrice})

	require.NoError(t, err)
	assert.Equal(t, int64(650), product.PriceCents)
	// Untouched fields keep their stored values.
	assert.Equal(t, "Vitamin C 500mg", product.Name)
	assert.Equal(t, 10, product.StockQuantity)
}

func TestCatalogService_BrowseCatalog_DefaultsAndClamp(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()

	fx.productRepo.EXPECT().
		FindActive(ctx, repository.CatalogFilter{Limit: 20, Offset: 0}).
		Return([]*entity.Product{}, nil).
		Once()
	_, err := fx.service.BrowseCatalog(ctx, usecase.BrowseCatalogInput{})
	require.NoError(t, err)

	fx.productRepo.EXPECT().
		FindActive(ctx, repository.CatalogFilter{Limit: 100, Offset: 100}).
		Return([]*entity.Product{}, nil).
		Once()
	_, err = fx.service.BrowseCatalog(ctx, usecase.BrowseCatalogInput{Page: 2, PageSize: 500})
	require.NoError(t, err)
}

func TestCatalogService_BrowseCatalog_FiltersPassThrough(t *testing.T) {
	fx := createTestCatalogService(t)

	ctx := context.Background()
	category := entity.CategoryOTC
	pharmacyID := uuid.New()

	fx.productRepo.EXPECT().
		FindActive(ctx, repository.CatalogFilter{
			Category:   &category,
			PharmacyID: &pharmacyID,
			Limit:      20,
		}).
		Return([]*entity.Product{{ID: uuid.New(), IsActive: true}}, nil)

	products, err := fx.service.BrowseCatalog(ctx, usecase.BrowseCatalogInput{
		Category:   &category,
		PharmacyID: &pharmacyID,
	})

	require.NoError(t, err)
	assert.Len(t, products, 1)
}
