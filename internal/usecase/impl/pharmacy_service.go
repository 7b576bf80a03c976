package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "pharmahub/internal/delivery/context"
	"pharmahub/internal/domain/entity"
	domainerrors "pharmahub/internal/domain/errors"
	"pharmahub/internal/domain/repository"
	"pharmahub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// pharmacyService implements the PharmacyUsecase interface.
type pharmacyService struct {
	txManager    repository.TransactionManager
	pharmacyRepo repository.PharmacyRepository
	logger       *slog.Logger
}

// NewPharmacyService is the constructor for pharmacyService.
func NewPharmacyService(
	txManager repository.TransactionManager,
	pharmacyRepo repository.PharmacyRepository,
	logger *slog.Logger,
) usecase.PharmacyUsecase {
	return &pharmacyService{
		txManager:    txManager,
		pharmacyRepo: pharmacyRepo,
		logger:       logger,
	}
}

func (srv *pharmacyService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SubmitPharmacy registers a pharmacy for an existing user account and grants
// the pharmacy role in the same transaction. The verification status always
// starts pending regardless of input.
func (srv *pharmacyService) SubmitPharmacy(ctx context.Context, ownerUserID uuid.UUID, input usecase.SubmitPharmacyInput) (*entity.Pharmacy, error) {
	srv.log(ctx).Info("Submitting pharmacy registration", slog.Any("ownerUserID", ownerUserID))

	newPharmacy := &entity.Pharmacy{
		OwnerUserID:        ownerUserID,
		Name:               input.Name,
		LicenseNumber:      input.LicenseNumber,
		RegulatoryID:       input.RegulatoryID,
		Phone:              input.Phone,
		Address:            input.Address,
		VerificationStatus: entity.VerificationPending,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.PharmacyRepo().Create(ctx, newPharmacy); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicatePharmacyOwner):
				return errors.Wrap(domainerrors.ErrPharmacyAlreadyExists, "user already owns a pharmacy")
			case errors.Is(err, repository.ErrDuplicateLicense):
				return errors.Wrap(domainerrors.ErrLicenseAlreadyExists, "license number already registered")
			default:
				return errors.Wrap(err, "failed to create pharmacy")
			}
		}

		if err := repoFactory.RoleRepo().GrantRole(ctx, ownerUserID, entity.RolePharmacy); err != nil {
			return errors.Wrap(err, "failed to grant pharmacy role")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Pharmacy submission failed", slog.Any("ownerUserID", ownerUserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute pharmacy submission transaction")
	}

	srv.log(ctx).Debug("Pharmacy submitted", slog.Any("pharmacyID", newPharmacy.ID))

	return newPharmacy, nil
}

// GetMyPharmacy returns the pharmacy owned by the calling user.
func (srv *pharmacyService) GetMyPharmacy(ctx context.Context, ownerUserID uuid.UUID) (*entity.Pharmacy, error) {
	pharmacy, err := srv.pharmacyRepo.FindByOwner(ctx, ownerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrPharmacyNotFound) {
			return nil, errors.Wrap(domainerrors.ErrPharmacyNotFound, "no pharmacy registered for this account")
		}

		return nil, errors.Wrap(err, "failed to find pharmacy by owner")
	}

	return pharmacy, nil
}

// GetPharmacy returns a pharmacy by ID.
func (srv *pharmacyService) GetPharmacy(ctx context.Context, pharmacyID uuid.UUID) (*entity.Pharmacy, error) {
	pharmacy, err := srv.pharmacyRepo.FindByID(ctx, pharmacyID)
	if err != nil {
		if errors.Is(err, repository.ErrPharmacyNotFound) {
			return nil, errors.Wrap(domainerrors.ErrPharmacyNotFound, "pharmacy not found")
		}

		return nil, errors.Wrap(err, "failed to find pharmacy")
	}

	return pharmacy, nil
}

// ListPendingPharmacies returns the admin review queue.
func (srv *pharmacyService) ListPendingPharmacies(ctx context.Context) ([]*entity.Pharmacy, error) {
	pharmacies, err := srv.pharmacyRepo.FindByStatus(ctx, entity.VerificationPending)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pending pharmacies")
	}

	return pharmacies, nil
}

// ReviewPharmacy records an admin's verdict on a pending pharmacy.
// Approval stamps VerifiedAt; a pharmacy that already carries a verdict
// cannot be reviewed again.
func (srv *pharmacyService) ReviewPharmacy(ctx context.Context, input usecase.ReviewPharmacyInput) (*entity.Pharmacy, error) {
	srv.log(ctx).Info("Reviewing pharmacy",
		slog.Any("pharmacyID", input.PharmacyID),
		slog.Bool("approve", input.Approve),
	)

	var reviewed *entity.Pharmacy
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		pharmacyRepo := repoFactory.PharmacyRepo()

		pharmacy, err := pharmacyRepo.FindByID(ctx, input.PharmacyID)
		if err != nil {
			if errors.Is(err, repository.ErrPharmacyNotFound) {
				return errors.Wrap(domainerrors.ErrPharmacyNotFound, "pharmacy not found")
			}

			return errors.Wrap(err, "failed to find pharmacy")
		}

		if pharmacy.VerificationStatus != entity.VerificationPending {
			return errors.Wrap(domainerrors.ErrInvalidStatusChange, "pharmacy has already been reviewed")
		}

		if input.Approve {
			now := time.Now()
			pharmacy.VerificationStatus = entity.VerificationApproved
			pharmacy.VerifiedAt = &now
		} else {
			pharmacy.VerificationStatus = entity.VerificationRejected
		}

		if err := pharmacyRepo.Update(ctx, pharmacy); err != nil {
			return errors.Wrap(err, "failed to update pharmacy verification status")
		}
		reviewed = pharmacy

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Pharmacy review failed", slog.Any("pharmacyID", input.PharmacyID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute pharmacy review transaction")
	}

	return reviewed, nil
}
