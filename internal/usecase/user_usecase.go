// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"pharmahub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterCustomerInput defines the data required to register a new customer.
type RegisterCustomerInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

// RegisterPharmacyInput defines the data required to register a new pharmacy
// owner: the user account and the pending pharmacy are created together.
type RegisterPharmacyInput struct {
	Name          string
	Email         string
	Password      string
	PharmacyName  string
	LicenseNumber string
	RegulatoryID  string
	Phone         string
	Address       string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's basic information.
type RegisterOutput struct {
	User     *entity.User
	Pharmacy *entity.Pharmacy // Only set for pharmacy registration.
}

// LoginOutput returns the generated tokens after a successful login.
type LoginOutput struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User
}

// RefreshOutput returns the rotated token pair.
type RefreshOutput struct {
	AccessToken  string
	RefreshToken string
}

// UserUsecase defines the interface for user-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	RegisterCustomer(ctx context.Context, input RegisterCustomerInput) (*RegisterOutput, error)
	RegisterPharmacy(ctx context.Context, input RegisterPharmacyInput) (*RegisterOutput, error)
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)
	RefreshToken(ctx context.Context, refreshToken string) (*RefreshOutput, error)
	Logout(ctx context.Context, refreshToken string) error

	// ResolveRoles returns the roles used for authorization decisions. An
	// empty assignment set resolves to customer and the missing assignment is
	// backfilled; a lookup failure yields RoleUnknown so callers refuse
	// privileged actions instead of silently downgrading.
	ResolveRoles(ctx context.Context, userID uuid.UUID) (entity.Roles, error)
}
