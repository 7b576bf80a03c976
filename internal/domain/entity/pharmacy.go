package entity

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the admin-controlled trust gate on a pharmacy.
type VerificationStatus string

const (
	// VerificationPending is the forced initial status on self-registration.
	VerificationPending VerificationStatus = "pending"
	// VerificationApproved unlocks full marketplace participation.
	VerificationApproved VerificationStatus = "approved"
	// VerificationRejected marks a pharmacy an admin has turned down.
	VerificationRejected VerificationStatus = "rejected"
)

// String returns the string representation of the VerificationStatus.
func (s VerificationStatus) String() string {
	return string(s)
}

// IsValid checks if the VerificationStatus is a valid value.
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	default:
		return false
	}
}

// Pharmacy is a registered seller entity. Exactly one pharmacy per owning
// user: the owner link is unique at the persistence layer.
type Pharmacy struct {
	ID                 uuid.UUID          // The unique ID of the pharmacy.
	OwnerUserID        uuid.UUID          // The user who owns and operates this pharmacy (unique).
	Name               string             // The pharmacy's trading name.
	LicenseNumber      string             // The official pharmacy license number, globally unique.
	RegulatoryID       string             // Optional additional regulatory identifier.
	Phone              string             // Contact phone number.
	Address            string             // The physical address of the pharmacy.
	VerificationStatus VerificationStatus // pending / approved / rejected, controlled by admins only.
	VerifiedAt         *time.Time         // Set when an admin approves the pharmacy.
	CreatedAt          time.Time          // Timestamp of when this pharmacy registered.
	UpdatedAt          time.Time          // Timestamp of the last modification.
}

// IsApproved reports whether the pharmacy has passed admin verification.
// Only approved pharmacies may manage products or advance orders.
func (p *Pharmacy) IsApproved() bool {
	return p.VerificationStatus == VerificationApproved
}
