// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"pharmahub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// SubmitPharmacyInput defines the data required to register a pharmacy for an
// existing user account. The verification status always starts pending.
type SubmitPharmacyInput struct {
	Name          string
	LicenseNumber string
	RegulatoryID  string
	Phone         string
	Address       string
}

// ReviewPharmacyInput defines an admin's verdict on a pending pharmacy.
type ReviewPharmacyInput struct {
	PharmacyID uuid.UUID
	Approve    bool
}

// PharmacyUsecase defines the interface for pharmacy registration and the
// admin verification workflow.
type PharmacyUsecase interface {
	// SubmitPharmacy registers a pharmacy for the calling user and grants the
	// pharmacy role. One pharmacy per user; duplicates are rejected.
	SubmitPharmacy(ctx context.Context, ownerUserID uuid.UUID, input SubmitPharmacyInput) (*entity.Pharmacy, error)

	// GetMyPharmacy returns the pharmacy owned by the calling user.
	GetMyPharmacy(ctx context.Context, ownerUserID uuid.UUID) (*entity.Pharmacy, error)

	// GetPharmacy returns a pharmacy by ID.
	GetPharmacy(ctx context.Context, pharmacyID uuid.UUID) (*entity.Pharmacy, error)

	// ListPendingPharmacies returns the admin review queue, newest first.
	ListPendingPharmacies(ctx context.Context) ([]*entity.Pharmacy, error)

	// ReviewPharmacy approves or rejects a pending pharmacy. Approval stamps
	// VerifiedAt and unlocks catalog management for the owner.
	ReviewPharmacy(ctx context.Context, input ReviewPharmacyInput) (*entity.Pharmacy, error)
}
