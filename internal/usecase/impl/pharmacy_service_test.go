package impl

import (
	"context"
	"testing"

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

type pharmacyServiceFixtures struct {
	service      usecase.PharmacyUsecase
	txManager    *mockRepo.MockTransactionManager
	pharmacyRepo *mockRepo.MockPharmacyRepository
}

func createTestPharmacyService(t *testing.T) pharmacyServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	pharmacyRepo := mockRepo.NewMockPharmacyRepository(t)

	svc := NewPharmacyService(txManager, pharmacyRepo, newDiscardLogger())

	return pharmacyServiceFixtures{
		service:      svc,
		txManager:    txManager,
		pharmacyRepo: pharmacyRepo,
	}
}

func TestPharmacyService_SubmitPharmacy_Success(t *testing.T) {
	fx := createTestPharmacyService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	input := usecase.SubmitPharmacyInput{
		Name:          "Corner Pharmacy",
		LicenseNumber: "LIC-001",
		Phone:         "0223456789",
		Address:       "2 Market Street",
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockPharmacyRepo := mockRepo.NewMockPharmacyRepository(t)
			mockRoleRepo := mockRepo.NewMockRoleRepository(t)

			mockFactory.EXPECT().PharmacyRepo().Return(mockPharmacyRepo)
			mockFactory.EXPECT().RoleRepo().Return(mockRoleRepo)

			mockPharmacyRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.Pharmacy")).
				Run(func(ctx context.Context, pharmacy *entity.Pharmacy) {
					pharmacy.ID = uuid.New()
				}).
				Return(nil)
			mockRoleRepo.EXPECT().
				GrantRole(ctx, ownerID, entity.RolePharmacy).
				Return(nil)

			return fn(mockFactory)
		})

	pharmacy, err := fx.service.SubmitPharmacy(ctx, ownerID, input)

	require.NoError(t, err)
	assert.Equal(t, ownerID, pharmacy.OwnerUserID)
	assert.Equal(t, entity.VerificationPending, pharmacy.VerificationStatus)
	assert.Nil(t, pharmacy.VerifiedAt)
}

func TestPharmacyService_SubmitPharmacy_AlreadyOwner(t *testing.T) {
	fx := createTestPharmacyService(t)

	ctx := context.Background()
	ownerID := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockPharmacyRepo := mockRepo.NewMockPharmacyRepository(t)

			mockFactory.EXPECT().PharmacyRepo().Return(mockPharmacyRepo)
			mockPharmacyRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.Pharmacy")).
				Return(repository.ErrDuplicatePharmacyOwner)

			return fn(mockFactory)
		})

	pharmacy, err := fx.service.SubmitPharmacy(ctx, ownerID, usecase.SubmitPharmacyInput{Name: "Second"})

	assert.Error(t, err)
	assert.Nil(t, pharmacy)
	assert.True(t, errors.Is(err, domainerrors.ErrPharmacyAlreadyExists))
}

func TestPharmacyService_ReviewPharmacy_Approve(t *testing.T) {
	fx := createTestPharmacyService(t)

	ctx := context.Background()
	pharmacyID := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockPharmacyRepo := mockRepo.NewMockPharmacyRepository(t)

			mockFactory.EXPECT().PharmacyRepo().Return(mockPharmacyRepo)
			mockPharmacyRepo.EXPECT().
				FindByID(ctx, pharmacyID).
				Return(&entity.Pharmacy{
					ID:                 pharmacyID,
					VerificationStatus: entity.VerificationPending,
				}, nil)
			mockPharmacyRepo.EXPECT().
				Update(ctx, mock.AnythingOfType("*entity.Pharmacy")).
				Return(nil)

			return fn(mockFactory)
		})

	pharmacy, err := fx.service.ReviewPharmacy(ctx, usecase.ReviewPharmacyInput{PharmacyID: pharmacyID, Approve: true})

	require.NoError(t, err)
	assert.Equal(t, entity.VerificationApproved, pharmacy.VerificationStatus)
	require.NotNil(t, pharmacy.VerifiedAt)
	assert.True(t, pharmacy.IsApproved())
}

func TestPharmacyService_ReviewPharmacy_Reject(t *testing.T) {
	fx := createTestPharmacyService(t)

	ctx := context.Background()
	pharmacyID := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockPharmacyRepo := mockRepo.NewMockPharmacyRepository(t)

			mockFactory.EXPECT().PharmacyRepo().Return(mockPharmacyRepo)
			mockPharmacyRepo.EXPECT().
				FindByID(ctx, pharmacyID).
				Return(&entity.Pharmacy{
					ID:                 pharmacyID,
					VerificationStatus: entity.VerificationPending,
				}, nil)
			mockPharmacyRepo.EXPECT().
				Update(ctx, mock.AnythingOfType("*entity.Pharmacy")).
				Return(nil)

			return fn(mockFactory)
		})

	pharmacy, err := fx.service.ReviewPharmacy(ctx, usecase.ReviewPharmacyInput{PharmacyID: pharmacyID, Approve: false})

	require.NoError(t, err)
	assert.Equal(t, entity.VerificationRejected, pharmacy.VerificationStatus)
	assert.Nil(t, pharmacy.VerifiedAt)
}

func TestPharmacyService_ReviewPharmacy_AlreadyReviewed(t *testing.T) {
	fx := createTestPharmacyService(t)

	ctx := context.Background()
	pharmacyID := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockPharmacyRepo := mockRepo.NewMockPharmacyRepository(t)

			mockFactory.EXPECT().PharmacyRepo().Return(mockPharmacyRepo)
			mockPharmacyRepo.EXPECT().
				FindByID(ctx, pharmacyID).
				Return(&entity.Pharmacy{
					ID:                 pharmacyID,
					VerificationStatus: entity.VerificationApproved,
				}, nil)

			return fn(mockFactory)
		})

	pharmacy, err := fx.service.ReviewPharmacy(ctx, usecase.ReviewPharmacyInput{PharmacyID: pharmacyID, Approve: false})

	assert.Error(t, err)
	assert.Nil(t, pharmacy)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidStatusChange))
}

func TestPharmacyService_GetMyPharmacy_NotFound(t *testing.T) {
	fx := createTestPharmacyService(t)

	ctx := context.Background()
	ownerID := uuid.New()

	fx.pharmacyRepo.EXPECT().
		FindByOwner(ctx, ownerID).
		Return(nil, repository.ErrPharmacyNotFound)

	pharmacy, err := fx.service.GetMyPharmacy(ctx, ownerID)

	assert.Error(t, err)
	assert.Nil(t, pharmacy)
	assert.True(t, errors.Is(err, domainerrors.ErrPharmacyNotFound))
}

func TestPharmacyService_ListPendingPharmacies(t *testing.T) {
	fx := createTestPharmacyService(t)

	ctx := context.Background()
	pending := []*entity.Pharmacy{
		{ID: uuid.New(), VerificationStatus: entity.VerificationPending},
		{ID: uuid.New(), VerificationStatus: entity.VerificationPending},
	}

	fx.pharmacyRepo.EXPECT().
		FindByStatus(ctx, entity.VerificationPending).
		Return(pending, nil)

	queue, err := fx.service.ListPendingPharmacies(ctx)

	require.NoError(t, err)
	assert.Len(t, queue, 2)
}
