// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"strings"

	"pharmahub/internal/domain/entity"
	domainerrors "pharmahub/internal/domain/errors"
	"pharmahub/internal/domain/repository"
	"pharmahub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// pharmacyRepository implements the repository.PharmacyRepository interface.
type pharmacyRepository struct {
	db *gorm.DB
}

// NewPharmacyRepository is the constructor for pharmacyRepository.
func NewPharmacyRepository(db *gorm.DB) repository.PharmacyRepository {
	return &pharmacyRepository{
		db: db,
	}
}

// Create persists a new pharmacy. The verification status is forced to
// pending here so no caller can self-register an approved pharmacy.
func (repo *pharmacyRepository) Create(ctx context.Context, pharmacy *entity.Pharmacy) error {
	pharmacy.VerificationStatus = entity.VerificationPending
	pharmacyM := fromPharmacyDomain(pharmacy)

	if err := repo.db.WithContext(ctx).Create(pharmacyM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors. Two unique constraints
		// live on this table, so the violated column decides the error.
		if isUniqueConstraintViolation(err) {
			if strings.Contains(strings.ToLower(err.Error()), "license") {
				return repository.ErrDuplicateLicense
			}

			return repository.ErrDuplicatePharmacyOwner
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required pharmacy information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create pharmacy")
	}

	// Update the entity with generated values
	pharmacy.ID = pharmacyM.ID
	pharmacy.CreatedAt = pharmacyM.CreatedAt
	pharmacy.UpdatedAt = pharmacyM.UpdatedAt

	return nil
}

// FindByID retrieves a single pharmacy by its unique ID.
func (repo *pharmacyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Pharmacy, error) {
	var pharmacyM model.PharmacyModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&pharmacyM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPharmacyNotFound
		}

		return nil, errors.Wrap(err, "failed to find pharmacy by id")
	}

	return toPharmacyDomain(&pharmacyM), nil
}

// FindByOwner retrieves the pharmacy owned by the given user.
func (repo *pharmacyRepository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*entity.Pharmacy, error) {
	var pharmacyM model.PharmacyModel

	if err := repo.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		First(&pharmacyM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPharmacyNotFound
		}

		return nil, errors.Wrap(err, "failed to find pharmacy by owner")
	}

	return toPharmacyDomain(&pharmacyM), nil
}

// FindByStatus lists pharmacies with the given verification status, newest first.
func (repo *pharmacyRepository) FindByStatus(ctx context.Context, status entity.VerificationStatus) ([]*entity.Pharmacy, error) {
	var pharmacyModels []*model.PharmacyModel

	if err := repo.db.WithContext(ctx).
		Where("verification_status = ?", status.String()).
		Order("created_at DESC").
		Find(&pharmacyModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find pharmacies by status")
	}

	pharmacies := make([]*entity.Pharmacy, 0, len(pharmacyModels))
	for _, pharmacyM := range pharmacyModels {
		pharmacies = append(pharmacies, toPharmacyDomain(pharmacyM))
	}

	return pharmacies, nil
}

// Update modifies an existing pharmacy.
func (repo *pharmacyRepository) Update(ctx context.Context, pharmacy *entity.Pharmacy) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PharmacyModel{}).
		Where("id = ?", pharmacy.ID).
		Updates(map[string]any{
			"name":                pharmacy.Name,
			"license_number":      pharmacy.LicenseNumber,
			"regulatory_id":       pharmacy.RegulatoryID,
			"phone":               pharmacy.Phone,
			"address":             pharmacy.Address,
			"verification_status": pharmacy.VerificationStatus.String(),
			"verified_at":         pharmacy.VerifiedAt,
		})

	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return repository.ErrDuplicateLicense
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update pharmacy")
	}

	if result.RowsAffected == 0 {
		return repository.ErrPharmacyNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toPharmacyDomain converts a GORM PharmacyModel to a domain Pharmacy entity.
func toPharmacyDomain(data *model.PharmacyModel) *entity.Pharmacy {
	if data == nil {
		return nil
	}

	return &entity.Pharmacy{
		ID:                 data.ID,
		OwnerUserID:        data.OwnerUserID,
		Name:               data.Name,
		LicenseNumber:      data.LicenseNumber,
		RegulatoryID:       data.RegulatoryID,
		Phone:              data.Phone,
		Address:            data.Address,
		VerificationStatus: entity.VerificationStatus(data.VerificationStatus),
		VerifiedAt:         data.VerifiedAt,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}

// fromPharmacyDomain converts a domain Pharmacy entity to a GORM PharmacyModel.
func fromPharmacyDomain(data *entity.Pharmacy) *model.PharmacyModel {
	if data == nil {
		return nil
	}

	return &model.PharmacyModel{
		ID:                 data.ID,
		OwnerUserID:        data.OwnerUserID,
		Name:               data.Name,
		LicenseNumber:      data.LicenseNumber,
		RegulatoryID:       data.RegulatoryID,
		Phone:              data.Phone,
		Address:            data.Address,
		VerificationStatus: data.VerificationStatus.String(),
		VerifiedAt:         data.VerifiedAt,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}
