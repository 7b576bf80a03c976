package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProductCategory classifies a catalog product.
type ProductCategory string

const (
	// CategoryOTC covers over-the-counter medication.
	CategoryOTC ProductCategory = "otc"
	// CategorySupplements covers vitamins and dietary supplements.
	CategorySupplements ProductCategory = "supplements"
	// CategoryCosmetics covers skincare and cosmetic products.
	CategoryCosmetics ProductCategory = "cosmetics"
	// CategoryMedicalDevices covers thermometers, monitors and similar devices.
	CategoryMedicalDevices ProductCategory = "medical_devices"
)

// String returns the string representation of the ProductCategory.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid checks if the ProductCategory is a valid value.
func (c ProductCategory) IsValid() bool {
	switch c {
	case CategoryOTC, CategorySupplements, CategoryCosmetics, CategoryMedicalDevices:
		return true
	default:
		return false
	}
}

// Product is a catalog item owned by exactly one pharmacy.
// Prices are kept in minor currency units (cents) to avoid float arithmetic.
type Product struct {
	ID            uuid.UUID       // The unique ID of the product.
	PharmacyID    uuid.UUID       // The owning pharmacy.
	Name          string          // Display name of the product.
	Description   string          // Free-form description.
	Category      ProductCategory // otc / supplements / cosmetics / medical_devices.
	PriceCents    int64           // Current price in minor currency units.
	StockQuantity int             // Units on hand, never negative.
	IsActive      bool            // Customer visibility switch, evaluated independently of stock.
	ExpiryDate    *time.Time      // Optional expiry date for perishable items.
	CreatedAt     time.Time       // Timestamp of when this product was listed.
	UpdatedAt     time.Time       // Timestamp of the last modification.
}
