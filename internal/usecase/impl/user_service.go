// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"pharmahub/config"
	deliverycontext "pharmahub/internal/delivery/context"
	"pharmahub/internal/domain/entity"
	domainerrors "pharmahub/internal/domain/errors"
	"pharmahub/internal/domain/repository"
	"pharmahub/internal/domain/service"
	"pharmahub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager         repository.TransactionManager
	userRepo          repository.UserRepository
	roleRepo          repository.RoleRepository
	refreshTokenRepo  repository.RefreshTokenRepository
	hasher            service.PasswordHasher
	tokenService      service.TokenService
	maxActiveSessions int
	logger            *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	UserRepo         repository.UserRepository
	RoleRepo         repository.RoleRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	Config           *config.Config
	Logger           *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	maxActiveSessions := 0
	if params.Config != nil && params.Config.Auth != nil {
		maxActiveSessions = params.Config.Auth.MaxActiveSessions
	}

	return &userService{
		txManager:         params.TxManager,
		userRepo:          params.UserRepo,
		roleRepo:          params.RoleRepo,
		refreshTokenRepo:  params.RefreshTokenRepo,
		hasher:            params.Hasher,
		tokenService:      params.TokenService,
		maxActiveSessions: maxActiveSessions,
		logger:            params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RegisterCustomer orchestrates the complete customer registration process.
func (srv *userService) RegisterCustomer(ctx context.Context, input usecase.RegisterCustomerInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting customer registration", slog.String("email", input.Email))

	hashedPassword, err := srv.prepareCredentials(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	var registeredUser *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		newUser := &entity.User{
			Name:  input.Name,
			Email: input.Email,
			Profile: &entity.Profile{
				FullName: input.Name,
				Phone:    input.Phone,
				Address:  input.Address,
			},
		}

		if err := srv.createAccount(ctx, repoFactory, newUser, input.Email, hashedPassword); err != nil {
			return err
		}

		if err := repoFactory.RoleRepo().GrantRole(ctx, newUser.ID, entity.RoleCustomer); err != nil {
			return errors.Wrap(err, "failed to grant customer role")
		}
		newUser.Roles = newUser.Roles.Add(entity.RoleCustomer)

		registeredUser = newUser

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute customer registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute customer registration transaction")
	}

	srv.log(ctx).Debug("Customer registration completed", slog.Any("userID", registeredUser.ID))

	return &usecase.RegisterOutput{User: registeredUser}, nil
}

// RegisterPharmacy registers a pharmacy owner: the user account, the pharmacy
// role and the pending pharmacy record are created in one transaction so a
// partial signup can never leave an ownerless pharmacy behind.
func (srv *userService) RegisterPharmacy(ctx context.Context, input usecase.RegisterPharmacyInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting pharmacy registration", slog.String("email", input.Email))

	hashedPassword, err := srv.prepareCredentials(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	var registeredUser *entity.User
	var registeredPharmacy *entity.Pharmacy
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		newUser := &entity.User{
			Name:  input.Name,
			Email: input.Email,
			Profile: &entity.Profile{
				FullName: input.Name,
				Phone:    input.Phone,
				Address:  input.Address,
			},
		}

		if err := srv.createAccount(ctx, repoFactory, newUser, input.Email, hashedPassword); err != nil {
			return err
		}

		roleRepo := repoFactory.RoleRepo()
		if err := roleRepo.GrantRole(ctx, newUser.ID, entity.RoleCustomer); err != nil {
			return errors.Wrap(err, "failed to grant customer role")
		}
		if err := roleRepo.GrantRole(ctx, newUser.ID, entity.RolePharmacy); err != nil {
			return errors.Wrap(err, "failed to grant pharmacy role")
		}
		newUser.Roles = newUser.Roles.Add(entity.RoleCustomer).Add(entity.RolePharmacy)

		newPharmacy := &entity.Pharmacy{
			OwnerUserID:        newUser.ID,
			Name:               input.PharmacyName,
			LicenseNumber:      input.LicenseNumber,
			RegulatoryID:       input.RegulatoryID,
			Phone:              input.Phone,
			Address:            input.Address,
			VerificationStatus: entity.VerificationPending,
		}
		if err := repoFactory.PharmacyRepo().Create(ctx, newPharmacy); err != nil {
			if errors.Is(err, repository.ErrDuplicateLicense) {
				return errors.Wrap(domainerrors.ErrLicenseAlreadyExists, "license number already registered")
			}

			return errors.Wrap(err, "failed to create pharmacy during registration")
		}

		registeredUser = newUser
		registeredPharmacy = newPharmacy

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute pharmacy registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute pharmacy registration transaction")
	}

	srv.log(ctx).Debug("Pharmacy registration completed",
		slog.Any("userID", registeredUser.ID),
		slog.Any("pharmacyID", registeredPharmacy.ID),
	)

	return &usecase.RegisterOutput{User: registeredUser, Pharmacy: registeredPharmacy}, nil
}

// prepareCredentials validates and hashes a plaintext password outside any
// transaction (bcrypt is CPU-bound).
func (srv *userService) prepareCredentials(ctx context.Context, password string) (string, error) {
	if err := srv.hasher.ValidatePasswordStrength(password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.Any("error", err))

		return "", errors.Wrap(err, "password does not meet security requirements")
	}

	hashedPassword, err := srv.hasher.Hash(password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return "", errors.Wrap(domainerrors.ErrPasswordHashFailed, "failed to hash password during registration")
	}

	return hashedPassword, nil
}

// createAccount creates the user row and its email credential.
func (srv *userService) createAccount(
	ctx context.Context,
	repoFactory repository.RepositoryFactory,
	newUser *entity.User,
	email, hashedPassword string,
) error {
	authRepo := repoFactory.AuthRepo()

	_, err := authRepo.FindAuthentication(ctx, entity.ProviderTypeEmail, email)
	if err == nil {
		return errors.Wrap(domainerrors.ErrUserAlreadyExists, "email already registered")
	}
	if !errors.Is(err, repository.ErrAuthNotFound) {
		return errors.Wrap(err, "failed to find authentication")
	}

	if err := repoFactory.UserRepo().Create(ctx, newUser); err != nil {
		return errors.Wrap(err, "failed to create user during registration")
	}

	newAuth := &entity.Authentication{
		UserID:         newUser.ID,
		Provider:       entity.ProviderTypeEmail,
		ProviderUserID: email,
		PasswordHash:   hashedPassword,
	}
	if err := authRepo.CreateAuthentication(ctx, newAuth); err != nil {
		return errors.Wrap(err, "failed to create authentication during registration")
	}

	return nil
}

// Login orchestrates the user login process.
func (srv *userService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting user login", slog.String("email", input.Email))

	authRecord, err := srv.loadLoginAuth(ctx, input.Email)
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	// Check password outside transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, authRecord.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	loggedInUser, err := srv.userRepo.FindByID(ctx, authRecord.UserID)
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load login user")
	}

	roles, err := srv.ResolveRoles(ctx, loggedInUser.ID)
	if err != nil {
		return nil, err
	}
	loggedInUser.Roles = roles

	accessToken, refreshTokenString, err := srv.tokenService.GenerateTokens(loggedInUser.ID, roles.ToStrings())
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	if err := srv.persistLoginRefreshToken(ctx, loggedInUser.ID, refreshTokenString); err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create refresh token during login")
	}
	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", loggedInUser.ID))

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         loggedInUser,
	}, nil
}

func (srv *userService) loadLoginAuth(ctx context.Context, email string) (*entity.Authentication, error) {
	var authRecord *entity.Authentication

	// Load authentication from primary in a short transaction to avoid stale reads on replicas.
	if err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var findAuthErr error
		authRecord, findAuthErr = repoFactory.AuthRepo().FindAuthentication(ctx, entity.ProviderTypeEmail, email)
		if findAuthErr != nil {
			if errors.Is(findAuthErr, repository.ErrAuthNotFound) {
				return errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
			}

			return errors.Wrap(findAuthErr, "failed to find authentication")
		}

		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "failed to execute login auth transaction")
	}

	return authRecord, nil
}

func (srv *userService) persistLoginRefreshToken(ctx context.Context, userID uuid.UUID, refreshTokenString string) error {
	tokenHash := srv.tokenService.HashToken(refreshTokenString)
	newRefreshToken := &entity.RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(srv.tokenService.GetRefreshTokenDuration()),
	}

	if srv.maxActiveSessions > 0 {
		// When session limit is enabled, keep count and insert in one short transaction.
		if err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			refreshRepo := repoFactory.RefreshTokenRepo()

			activeSessions, err := refreshRepo.CountActiveSessionsByUserID(ctx, userID)
			if err != nil {
				return errors.Wrap(err, "failed to count active sessions")
			}
			if activeSessions >= srv.maxActiveSessions {
				return errors.Wrap(domainerrors.ErrSessionLimitExceeded, "active session limit exceeded")
			}

			return refreshRepo.CreateRefreshToken(ctx, newRefreshToken)
		}); err != nil {
			return errors.Wrap(err, "failed to execute user login transaction")
		}

		return nil
	}

	// No session limit: direct insert avoids unnecessary transaction overhead.
	if err := srv.refreshTokenRepo.CreateRefreshToken(ctx, newRefreshToken); err != nil {
		return errors.Wrap(err, "failed to store refresh token")
	}

	return nil
}

// RefreshToken handles the process of issuing a new access token using a refresh token.
// The refresh token remains unchanged for security reasons.
func (srv *userService) RefreshToken(ctx context.Context, refreshToken string) (*usecase.RefreshOutput, error) {
	srv.log(ctx).Info("Attempting to refresh access token")

	claims, err := srv.tokenService.ValidateToken(refreshToken)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "invalid refresh token")
	}

	// 1. Verify the refresh token exists in the database.
	tokenHash := srv.tokenService.HashToken(refreshToken)
	if _, err := srv.refreshTokenRepo.FindRefreshTokenByHash(ctx, tokenHash); err != nil {
		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "refresh token not found or expired")
	}

	// 2. Re-resolve roles so revoked or newly granted roles take effect.
	roles, err := srv.ResolveRoles(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	// 3. Generate only a new access token (refresh token remains unchanged).
	newAccessToken, _, err := srv.tokenService.GenerateTokens(claims.UserID, roles.ToStrings())
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate new access token")
	}

	return &usecase.RefreshOutput{
		AccessToken:  newAccessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout handles the process of invalidating a user's session by deleting their refresh token.
func (srv *userService) Logout(ctx context.Context, refreshToken string) error {
	srv.log(ctx).Info("Attempting to log out")

	if _, err := srv.tokenService.ValidateToken(refreshToken); err != nil {
		// Even if the token is invalid, we can proceed to delete it from the database.
		srv.log(ctx).Warn("Logout with invalid token", slog.Any("error", err))
	}

	tokenHash := srv.tokenService.HashToken(refreshToken)

	// Single operation - use direct repository instance
	if err := srv.refreshTokenRepo.DeleteRefreshTokenByHash(ctx, tokenHash); err != nil {
		srv.log(ctx).Error("Failed to delete refresh token", slog.Any("error", err))

		return errors.Wrap(err, "failed to delete refresh token")
	}
	srv.log(ctx).Info("Successfully logged out")

	return nil
}

// ResolveRoles loads the caller's role assignments for authorization.
//
// An empty assignment set resolves to the customer role and the missing
// assignment is backfilled so the next lookup finds it. A lookup failure
// maps to ErrRoleResolutionFailed: callers must treat the caller's role as
// unknown and refuse privileged actions rather than silently downgrading to
// customer.
func (srv *userService) ResolveRoles(ctx context.Context, userID uuid.UUID) (entity.Roles, error) {
	roles, err := srv.roleRepo.FindRolesByUser(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Role resolution failed", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrRoleResolutionFailed, "failed to resolve roles")
	}

	if len(roles) == 0 {
		// Self-heal: every account holds at least the customer role.
		if err := srv.roleRepo.GrantRole(ctx, userID, entity.RoleCustomer); err != nil {
			srv.log(ctx).Warn("Failed to backfill customer role", slog.Any("userID", userID), slog.Any("error", err))
		}
		roles = entity.Roles{entity.RoleCustomer}
	}

	return roles, nil
}
