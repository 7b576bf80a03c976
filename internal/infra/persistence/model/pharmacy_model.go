package model

import (
	"time"

	"github.com/google/uuid"
)

// PharmacyModel mirrors the 'pharmacies' table. The unique owner column
// enforces the one-pharmacy-per-user rule at the database level, and the
// unique license column enforces national license uniqueness.
type PharmacyModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OwnerUserID        uuid.UUID `gorm:"type:uuid;not null;unique"`
	Name               string    `gorm:"type:varchar(100);not null"`
	LicenseNumber      string    `gorm:"type:varchar(100);not null;unique"`
	RegulatoryID       string    `gorm:"type:varchar(100)"`
	Phone              string    `gorm:"type:varchar(50)"`
	Address            string    `gorm:"type:text"`
	VerificationStatus string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	VerifiedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Products []ProductModel `gorm:"foreignKey:PharmacyID"`
}

// TableName explicitly sets the table name for GORM.
func (PharmacyModel) TableName() string {
	return "pharmacies"
}
