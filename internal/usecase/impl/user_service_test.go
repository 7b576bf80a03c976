package impl

import (
	"context"
	"testing"
	"time"

	"pharmahub/internal/domain/entity"
	domainerrors "pharmahub/internal/domain/errors"
	"pharmahub/internal/domain/repository"
	"pharmahub/internal/domain/service"
	mockRepo "pharmahub/internal/mocks/repository"
	mockSvc "pharmahub/internal/mocks/service"
	"pharmahub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// userServiceFixtures holds all test dependencies for user service tests.
type userServiceFixtures struct {
	service          usecase.UserUsecase
	txManager        *mockRepo.MockTransactionManager
	userRepo         *mockRepo.MockUserRepository
	roleRepo         *mockRepo.MockRoleRepository
	refreshTokenRepo *mockRepo.MockRefreshTokenRepository
	hasher           *mockSvc.MockPasswordHasher
	tokenService     *mockSvc.MockTokenService
}

func createTestUserService(t *testing.T, maxActiveSessions int) userServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	roleRepo := mockRepo.NewMockRoleRepository(t)
	refreshTokenRepo := mockRepo.NewMockRefreshTokenRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)

	svc := NewUserService(UserServiceParams{
		TxManager:        txManager,
		UserRepo:         userRepo,
		RoleRepo:         roleRepo,
		RefreshTokenRepo: refreshTokenRepo,
		Hasher:           hasher,
		TokenService:     tokenService,
		Config:           newTestConfig(maxActiveSessions),
		Logger:           newDiscardLogger(),
	})

	return userServiceFixtures{
		service:          svc,
		txManager:        txManager,
		userRepo:         userRepo,
		roleRepo:         roleRepo,
		refreshTokenRepo: refreshTokenRepo,
		hasher:           hasher,
		tokenService:     tokenService,
	}
}

func refreshClaims(userID uuid.UUID) *service.Claims {
	return &service.Claims{
		UserID: userID,
		Roles:  []string{"customer"},
		Type:   "refresh",
	}
}

func TestUserService_RegisterCustomer_Success(t *testing.T) {
	fx := createTestUserService(t, 0)

	ctx := context.Background()
	input := usecase.RegisterCustomerInput{
		Name:     "Test Customer",
		Email:    "customer@example.com",
		Password: "Password123!",
		Phone:    "0912345678",
		Address:  "1 Main Street",
	}

	fx.hasher.EXPECT().ValidatePasswordStrength(input.Password).Return(nil)
	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)
			mockRoleRepo := mockRepo.NewMockRoleRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
			mockFactory.EXPECT().RoleRepo().Return(mockRoleRepo)

			mockAuthRepo.EXPECT().
				FindAuthentication(ctx, entity.ProviderTypeEmail, input.Email).
				Return(nil, repository.ErrAuthNotFound)

			mockUserRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.User")).
				Run(func(ctx context.Context, user *entity.User) {
					user.ID = uuid.New()
				}).
				Return(nil)

			mockAuthRepo.EXPECT().
				CreateAuthentication(ctx, mock.AnythingOfType("*entity.Authentication")).
				Return(nil)

			mockRoleRepo.EXPECT().
				GrantRole(ctx, mock.AnythingOfType("uuid.UUID"), entity.RoleCustomer).
				Return(nil)

			return fn(mockFactory)
		})

	output, err := fx.service.RegisterCustomer(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, input.Email, output.User.Email)
	assert.True(t, output.User.Roles.Contains(entity.RoleCustomer))
	assert.Nil(t, output.Pharmacy)
	require.NotNil(t, output.User.Profile)
	assert.Equal(t, input.Address, output.User.Profile.Address)
}

func TestUserService_RegisterCustomer_EmailTaken(t *testing.T) {
	fx := createTestUserService(t, 0)

	ctx := context.Background()
	input := usecase.RegisterCustomerInput{
		Name:     "Test Customer",
		Email:    "taken@example.com",
		Password: "Password123!",
	}

	fx.hasher.EXPECT().ValidatePasswordStrength(input.Password).Return(nil)
	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)

			mockAuthRepo.EXPECT().
				FindAuthentication(ctx, entity.ProviderTypeEmail, input.Email).
				Return(&entity.Authentication{UserID: uuid.New()}, nil)

			return fn(mockFactory)
		})

	output, err := fx.service.RegisterCustomer(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

func TestUserService_RegisterCustomer_WeakPassword(t *testing.T) {
	fx := createTestUserService(t, 0)

	ctx := context.Background()
	input := usecase.RegisterCustomerInput{
		Name:     "Test Customer",
		Email:    "customer@example.com",
		Password: "weak",
	}

	fx.hasher.EXPECT().
		ValidatePasswordStrength(input.Password).
		Return(domainerrors.ErrPasswordStrength)

	output, err := fx.service.RegisterCustomer(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordStrength))
}

func TestUserService_RegisterPharmacy_Success(t *testing.T) {
	fx := createTestUserService(t, 0)

	ctx := context.Background()
	input := usecase.RegisterPharmacyInput{
		Name:          "Owner",
		Email:         "owner@example.com",
		Password:      "Password123!",
		PharmacyName:  "Corner Pharmacy",
		LicenseNumber: "LIC-001",
		Phone:         "0223456789",
		Address:       "2 Market Street",
	}

	fx.hasher.EXPECT().ValidatePasswordStrength(input.Password).Return(nil)
	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)
			mockRoleRepo := mockRepo.NewMockRoleRepository(t)
			mockPharmacyRepo := mockRepo.NewMockPharmacyRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
			mockFactory.EXPECT().RoleRepo().Return(mockRoleRepo)
			mockFactory.EXPECT().PharmacyRepo().Return(mockPharmacyRepo)

			mockAuthRepo.EXPECT().
				FindAuthentication(ctx, entity.ProviderTypeEmail, input.Email).
				Return(nil, repository.ErrAuthNotFound)

			mockUserRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.User")).
				Run(func(ctx context.Context, user *entity.User) {
					user.ID = uuid.New()
				}).
				Return(nil)

			mockAuthRepo.EXPECT().
				CreateAuthentication(ctx, mock.AnythingOfType("*entity.Authentication")).
				Return(nil)

			mockRoleRepo.EXPECT().
				GrantRole(ctx, mock.AnythingOfType("uuid.UUID"), entity.RoleCustomer).
				Return(nil)
			mockRoleRepo.EXPECT().
				GrantRole(ctx, mock.AnythingOfType("uuid.UUID"), entity.RolePharmacy).
				Return(nil)

			mockPharmacyRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.Pharmacy")).
				Run(func(ctx context.Context, pharmacy *entity.Pharmacy) {
					pharmacy.ID = uuid.New()
				}).
				Return(nil)

			return fn(mockFactory)
		})

	output, err := fx.service.RegisterPharmacy(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, output)
	require.NotNil(t, output.Pharmacy)
	assert.Equal(t, entity.VerificationPending, output.Pharmacy.VerificationStatus)
	assert.True(t, output.User.Roles.Contains(entity.RolePharmacy))
	assert.True(t, output.User.Roles.Contains(entity.RoleCustomer))
}

func TestUserService_RegisterPharmacy_DuplicateLicense(t *testing.T) {
	fx := createTestUserService(t, 0)

	ctx := context.Background()
	input := usecase.RegisterPharmacyInput{
		Name:          "Owner",
		Email:         "owner@example.com",
		Password:      "Password123!",
		PharmacyName:  "Corner Pharmacy",
		LicenseNumber: "LIC-001",
	}

	fx.hasher.EXPECT().ValidatePasswordStrength(input.Password).Return(nil)
	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)
			mockRoleRepo := mockRepo.NewMockRoleRepository(t)
			mockPharmacyRepo := mockRepo.NewMockPharmacyRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
			mockFactory.EXPECT().RoleRepo().Return(mockRoleRepo)
			mockFactory.EXPECT().PharmacyRepo().Return(mockPharmacyRepo)

			mockAuthRepo.EXPECT().
				FindAuthentication(ctx, entity.ProviderTypeEmail, input.Email).
				Return(nil, repository.ErrAuthNotFound)
			mockUserRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.User")).
				Return(nil)
			mockAuthRepo.EXPECT().
				CreateAuthentication(ctx, mock.AnythingOfType("*entity.Authentication")).
				Return(nil)
			mockRoleRepo.EXPECT().
				GrantRole(ctx, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("entity.Role")).
				Return(nil)

			mockPharmacyRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.Pharmacy")).
				Return(repository.ErrDuplicateLicense)

			return fn(mockFactory)
		})

	output, err := fx.service.RegisterPharmacy(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrLicenseAlreadyExists))
}

func TestUserService_Login_Success(t *testing.T) {
	fx := createTestUserService(t, 0)

	ctx := context.Background()
	userID := uuid.New()
	input := usecase.LoginInput{Email: "customer@example.com", Password: "Password123!"}
	authRecord := &entity.Authentication{
		UserID:       userID,
		Provider:     entity.ProviderTypeEmail,
		PasswordHash: "hashed_password",
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
			mockAuthRepo.EXPECT().
				FindAuthentication(ctx, entity.ProviderTypeEmail, input.Email).
				Return(authRecord, nil)

			return fn(mockFactory)
		})

	fx.hasher.EXPECT().Check(input.Password, authRecord.PasswordHash).Return(true)
	fx.userRepo.EXPECT().
		FindByID(ctx, userID).
		Return(&entity.User{ID: userID, Email: input.Email}, nil)
	fx.roleRepo.EXPECT().
		FindRolesByUser(ctx, userID).
		Return(entity.Roles{entity.RoleCustomer}, nil)
	fx.tokenService.EXPECT().
		GenerateTokens(userID, []string{"customer"}).
		Return("access_token", "refresh_token", nil)
	fx.tokenService.EXPECT().HashToken("refresh_token").Return("token_hash")
	fx.tokenService.EXPECT().GetRefreshTokenDuration().Return(7 * 24 * time.Hour)
	fx.refreshTokenRepo.EXPECT().
		CreateRefreshToken(ctx, mock.AnythingOfType("*entity.RefreshToken")).
		Return(nil)

	output, err := fx.service.Login(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "access_token", output.AccessToken)
	assert.Equal(t, "refresh_token", output.RefreshToken)
	assert.Equal(t, userID, output.User.ID)
	assert.True(t, output.User.Roles.Contains(entity.RoleCustomer))
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	fx := createTestUserService(t, 0)

	ctx := context.Background()
	input := usecase.LoginInput{Email: "customer@example.com", Password: "wrong"}
	authRecord := &entity.Authentication{
		UserID:       uuid.New(),
		Provider:     entity.ProviderTypeEmail,
		PasswordHash: "hashed_password",
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
			mockAuthRepo.EXPECT().
				FindAuthentication(ctx, entity.ProviderTypeEmail, input.Email).
				Return(authRecord, nil)

			return fn(mockFactory)
		})

	fx.hasher.EXPECT().Check(input.Password, authRecord.PasswordHash).Return(false)

	output, err := fx.service.Login(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	fx := createTestUserService(t, 0)

	ctx := context.Background()
	input := usecase.LoginInput{Email: "nobody@example.com", Password: "Password123!"}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
			mockAuthRepo.EXPECT().
				FindAuthentication(ctx, entity.ProviderTypeEmail, input.Email).
				Return(nil, repository.ErrAuthNotFound)

			return fn(mockFactory)
		})

	output, err := fx.service.Login(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestUserService_Login_SessionLimitExceeded(t *testing.T) {
	fx := createTestUserService(t, 1)

	ctx := context.Background()
	userID := uuid.New()
	input := usecase.LoginInput{Email: "customer@example.com", Password: "Password123!"}
	authRecord := &entity.Authentication{
		UserID:       userID,
		Provider:     entity.ProviderTypeEmail,
		PasswordHash: "hashed_password",
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
			mockAuthRepo.EXPECT().
				FindAuthentication(ctx, entity.ProviderTypeEmail, input.Email).
				Return(authRecord, nil)

			return fn(mockFactory)
		}).Once()

	fx.hasher.EXPECT().Check(input.Password, authRecord.PasswordHash).Return(true)
	fx.userRepo.EXPECT().
		FindByID(ctx, userID).
		Return(&entity.User{ID: userID, Email: input.Email}, nil)
	fx.roleRepo.EXPECT().
		FindRolesByUser(ctx, userID).
		Return(entity.Roles{entity.RoleCustomer}, nil)
	fx.tokenService.EXPECT().
		GenerateTokens(userID, []string{"customer"}).
		Return("access_token", "refresh_token", nil)
	fx.tokenService.EXPECT().HashToken("refresh_token").Return("token_hash")
	fx.tokenService.EXPECT().GetRefreshTokenDuration().Return(7 * 24 * time.Hour)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockRefreshRepo := mockRepo.NewMockRefreshTokenRepository(t)

			mockFactory.EXPECT().RefreshTokenRepo().Return(mockRefreshRepo)
			mockRefreshRepo.EXPECT().
				CountActiveSessionsByUserID(ctx, userID).
				Return(1, nil)

			return fn(mockFactory)
		}).Once()

	output, err := fx.service.Login(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionLimitExceeded))
}

func TestUserService_RefreshToken_Success(t *testing.T) {
	fx := createTestUserService(t, 0)

	ctx := context.Background()
	userID := uuid.New()

	fx.tokenService.EXPECT().
		ValidateToken("refresh_token").
		Return(refreshClaims(userID), nil)
	fx.tokenService.EXPECT().HashToken("refresh_token").Return("token_hash")
	fx.refreshTokenRepo.EXPECT().
		FindRefreshTokenByHash(ctx, "token_hash").
		Return(&entity.RefreshToken{UserID: userID, TokenHash: "token_hash"}, nil)
	fx.roleRepo.EXPECT().
		FindRolesByUser(ctx, userID).
		Return(entity.Roles{entity.RoleCustomer}, nil)
	fx.tokenService.EXPECT().
		GenerateTokens(userID, []string{"customer"}).
		Return("new_access_token", "unused_refresh", nil)

	output, err := fx.service.RefreshToken(ctx, "refresh_token")

	require.NoError(t, err)
	assert.Equal(t, "new_access_token", output.AccessToken)
	// The refresh token itself is never rotated.
	assert.Equal(t, "refresh_token", output.RefreshToken)
}

func TestUserService_RefreshToken_NotStored(t *testing.T) {
	fx := createTestUserService(t, 0)

	ctx := context.Background()
	userID := uuid.New()

	fx.tokenService.EXPECT().
		ValidateToken("refresh_token").
		Return(refreshClaims(userID), nil)
	fx.tokenService.EXPECT().HashToken("refresh_token").Return("token_hash")
	fx.refreshTokenRepo.EXPECT().
		FindRefreshTokenByHash(ctx, "token_hash").
		Return(nil, repository.ErrRefreshTokenNotFound)

	output, err := fx.service.RefreshToken(ctx, "refresh_token")

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestUserService_Logout_Success(t *testing.T) {
	fx := createTestUserService(t, 0)

	ctx := context.Background()

	fx.tokenService.EXPECT().
		ValidateToken("refresh_token").
		Return(refreshClaims(uuid.New()), nil)
	fx.tokenService.EXPECT().HashToken("refresh_token").Return("token_hash")
	fx.refreshTokenRepo.EXPECT().
		DeleteRefreshTokenByHash(ctx, "token_hash").
		Return(nil)

	err := fx.service.Logout(ctx, "refresh_token")

	assert.NoError(t, err)
}

func TestUserService_ResolveRoles_BackfillsCustomer(t *testing.T) {
	fx := createTestUserService(t, 0)

	ctx := context.Background()
	userID := uuid.New()

	fx.roleRepo.EXPECT().
		FindRolesByUser(ctx, userID).
		Return(entity.Roles{}, nil)
	fx.roleRepo.EXPECT().
		GrantRole(ctx, userID, entity.RoleCustomer).
		Return(nil)

	roles, err := fx.service.ResolveRoles(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, entity.Roles{entity.RoleCustomer}, roles)
}

func TestUserService_ResolveRoles_QueryFailure(t *testing.T) {
	fx := createTestUserService(t, 0)

	ctx := context.Background()
	userID := uuid.New()

	fx.roleRepo.EXPECT().
		FindRolesByUser(ctx, userID).
		Return(nil, errors.New("connection refused"))

	roles, err := fx.service.ResolveRoles(ctx, userID)

	assert.Error(t, err)
	assert.Nil(t, roles)
	// A resolution failure must never silently downgrade to customer.
	assert.True(t, errors.Is(err, domainerrors.ErrRoleResolutionFailed))
}
