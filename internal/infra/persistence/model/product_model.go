package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductModel mirrors the 'products' table. Prices are stored in minor
// currency units and the check constraint keeps stock from going negative
// even if application-level guards are bypassed.
type ProductModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	PharmacyID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"type:varchar(255);not null"`
	Description   string    `gorm:"type:text"`
	Category      string    `gorm:"type:varchar(50);not null;index"`
	PriceCents    int64     `gorm:"not null"`
	StockQuantity int       `gorm:"not null;default:0;check:stock_quantity >= 0"`
	IsActive      bool      `gorm:"not null;default:true;index"`
	ExpiryDate    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}
