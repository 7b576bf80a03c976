package model

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryModel mirrors the 'deliveries' table. The unique order column
// enforces at most one delivery record per order.
type DeliveryModel struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OrderID             uuid.UUID  `gorm:"type:uuid;not null;unique"`
	AgentID             *uuid.UUID `gorm:"type:uuid;index"`
	Status              string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	ConfirmedByAdmin    bool       `gorm:"not null;default:false"`
	ConfirmedByPharmacy bool       `gorm:"not null;default:false"`
	DeliveredAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName explicitly sets the table name for GORM.
func (DeliveryModel) TableName() string {
	return "deliveries"
}
