package repository

import (
	"context"
	"errors"

	"pharmahub/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for pharmacy persistence.
var (
	// ErrPharmacyNotFound is returned when a pharmacy is not found.
	ErrPharmacyNotFound = errors.New("pharmacy not found")
	// ErrDuplicateLicense is returned when the license number is already registered.
	ErrDuplicateLicense = errors.New("license number already registered")
	// ErrDuplicatePharmacyOwner is returned when the owner already has a pharmacy.
	ErrDuplicatePharmacyOwner = errors.New("user already owns a pharmacy")
)

// PharmacyRepository defines the standard operations for pharmacy persistence.
type PharmacyRepository interface {
	// Create persists a new pharmacy. The verification status is always
	// pending on creation regardless of what the entity carries.
	Create(ctx context.Context, pharmacy *entity.Pharmacy) error

	// FindByID retrieves a single pharmacy by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Pharmacy, error)

	// FindByOwner retrieves the pharmacy owned by the given user.
	// Ownership is 1:1: the owner column carries a unique constraint.
	FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*entity.Pharmacy, error)

	// FindByStatus lists pharmacies with the given verification status,
	// newest first. Used by the admin review queue.
	FindByStatus(ctx context.Context, status entity.VerificationStatus) ([]*entity.Pharmacy, error)

	// Update modifies an existing pharmacy.
	Update(ctx context.Context, pharmacy *entity.Pharmacy) error
}
