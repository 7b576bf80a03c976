// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"time"

	"pharmahub/internal/domain/entity"

	"github.com/google/uuid"
)

// ProfileUsecase defines the interface for profile-related business operations.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input *UpdateProfileInput) error
}

// --- Input DTOs ---

// UpdateProfileInput defines the data required to update a profile.
// Nil fields are left untouched.
type UpdateProfileInput struct {
	FullName  *string    `json:"full_name,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Address   *string    `json:"address,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}
