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

func createTestProfileService(t *testing.T) (usecase.ProfileUsecase, *mockRepo.MockTransactionManager, *mockRepo.MockUserRepository) {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)

	svc := NewProfileService(txManager, userRepo, newDiscardLogger())

	return svc, txManager, userRepo
}

func TestProfileService_GetProfile_Success(t *testing.T) {
	svc, _, userRepo := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()

	userRepo.EXPECT().
		FindByID(ctx, userID).
		Return(&entity.User{
			ID:      userID,
			Name:    "Test User",
			Profile: &entity.Profile{UserID: userID, FullName: "Test User"},
		}, nil)

	user, err := svc.GetProfile(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	require.NotNil(t, user.Profile)
}

func TestProfileService_GetProfile_NotFound(t *testing.T) {
	svc, _, userRepo := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()

	userRepo.EXPECT().
		FindByID(ctx, userID).
		Return(nil, repository.ErrUserNotFound)

	user, err := svc.GetProfile(ctx, userID)

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestProfileService_UpdateProfile_PartialFields(t *testing.T) {
	svc, txManager, _ := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()
	stored := &entity.User{
		ID:   userID,
		Name: "Old Name",
		Profile: &entity.Profile{
			UserID:   userID,
			FullName: "Old Name",
			Phone:    "0911111111",
			Address:  "1 Old Street",
		},
	}

	txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockUserRepo.EXPECT().FindByID(ctx, userID).Return(stored, nil)
			mockUserRepo.EXPECT().
				Update(ctx, mock.AnythingOfType("*entity.User")).
				Return(nil)

			return fn(mockFactory)
		})

	newPhone := "0922222222"
	err := svc.UpdateProfile(ctx, userID, &usecase.UpdateProfileInput{Phone: &newPhone})

	require.NoError(t, err)
	assert.Equal(t, "0922222222", stored.Profile.Phone)
	// Untouched fields keep their stored values.
	assert.Equal(t, "Old Name", stored.Profile.FullName)
	assert.Equal(t, "1 Old Street", stored.Profile.Address)
}
