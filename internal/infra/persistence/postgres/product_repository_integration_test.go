package postgres

import (
	"context"
	"os"
	"testing"

	"pharmahub/internal/domain/entity"
	"pharmahub/internal/domain/repository"
	"pharmahub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// openTestDB connects to the database named by PHARMAHUB_TEST_DSN, migrates
// the tables under test and hands back a transaction that is rolled back when
// the test finishes, so runs leave no rows behind. The test is skipped when
// the variable is unset.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("PHARMAHUB_TEST_DSN")
	if dsn == "" {
		t.Skip("PHARMAHUB_TEST_DSN not set")
	}

	db, err := gorm.Open(gormpg.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// The models default their IDs with uuid_generate_v7(), which stock
	// postgres does not ship. The test schema aliases it to the built-in
	// gen_random_uuid(); seeded rows set their IDs explicitly anyway.
	require.NoError(t, db.Exec(
		"CREATE OR REPLACE FUNCTION uuid_generate_v7() RETURNS uuid AS 'SELECT gen_random_uuid()' LANGUAGE sql",
	).Error)
	require.NoError(t, db.AutoMigrate(&model.PharmacyModel{}, &model.ProductModel{}))

	tx := db.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() {
		tx.Rollback()
	})

	return tx
}

func seedPharmacy(t *testing.T, db *gorm.DB, verificationStatus string) uuid.UUID {
	t.Helper()

	pharmacyM := &model.PharmacyModel{
		ID:                 uuid.New(),
		OwnerUserID:        uuid.New(),
		Name:               "Test Pharmacy",
		LicenseNumber:      "LIC-" + uuid.New().String(),
		VerificationStatus: verificationStatus,
	}
	require.NoError(t, db.Create(pharmacyM).Error)

	return pharmacyM.ID
}

func seedProduct(t *testing.T, db *gorm.DB, pharmacyID uuid.UUID, isActive bool, stock int) uuid.UUID {
	t.Helper()

	productM := &model.ProductModel{
		ID:            uuid.New(),
		PharmacyID:    pharmacyID,
		Name:          "Test Product",
		Category:      "otc",
		PriceCents:    500,
		StockQuantity: stock,
		IsActive:      isActive,
	}
	require.NoError(t, db.Create(productM).Error)

	return productM.ID
}

func TestProductRepository_FindActive_VisibilityIntegration(t *testing.T) {
	db := openTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	approvedPharmacy := seedPharmacy(t, db, "approved")
	pendingPharmacy := seedPharmacy(t, db, "pending")

	activeApproved := seedProduct(t, db, approvedPharmacy, true, 10)
	inactiveApproved := seedProduct(t, db, approvedPharmacy, false, 10)
	activePending := seedProduct(t, db, pendingPharmacy, true, 0)

	// An inactive product stays hidden even though its pharmacy is approved.
	products, err := repo.FindActive(ctx, repository.CatalogFilter{PharmacyID: &approvedPharmacy, Limit: 50})
	require.NoError(t, err)
	ids := productIDSet(products)
	assert.True(t, ids[activeApproved])
	assert.False(t, ids[inactiveApproved])

	// An active product stays visible even though its pharmacy is still
	// pending and the stock is zero: only is_active gates the listing.
	products, err = repo.FindActive(ctx, repository.CatalogFilter{PharmacyID: &pendingPharmacy, Limit: 50})
	require.NoError(t, err)
	ids = productIDSet(products)
	assert.True(t, ids[activePending])
}

func TestProductRepository_FindActive_CategoryFilterIntegration(t *testing.T) {
	db := openTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	pharmacyID := seedPharmacy(t, db, "approved")
	otcID := seedProduct(t, db, pharmacyID, true, 5)

	cosmeticM := &model.ProductModel{
		ID:         uuid.New(),
		PharmacyID: pharmacyID,
		Name:       "Test Cream",
		Category:   "cosmetics",
		PriceCents: 900,
		IsActive:   true,
	}
	require.NoError(t, db.Create(cosmeticM).Error)

	category := entity.CategoryOTC
	products, err := repo.FindActive(ctx, repository.CatalogFilter{
		Category:   &category,
		PharmacyID: &pharmacyID,
		Limit:      50,
	})
	require.NoError(t, err)

	ids := productIDSet(products)
	assert.True(t, ids[otcID])
	assert.False(t, ids[cosmeticM.ID])
}

func productIDSet(products []*entity.Product) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(products))
	for _, product := range products {
		ids[product.ID] = true
	}

	return ids
}
