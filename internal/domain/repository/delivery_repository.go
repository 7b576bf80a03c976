package repository

import (
	"context"

	"pharmahub/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for delivery persistence.
var (
	// ErrDeliveryNotFound is returned when a delivery record is not found.
	ErrDeliveryNotFound = errors.New("delivery not found")
	// ErrDuplicateDelivery is returned when the order already has a delivery record.
	ErrDuplicateDelivery = errors.New("order already has a delivery")
)

// DeliveryRepository defines the standard operations for delivery persistence.
type DeliveryRepository interface {
	// Create persists a new delivery record. The order reference is unique:
	// arranging dispatch twice for the same order fails with ErrDuplicateDelivery.
	Create(ctx context.Context, delivery *entity.Delivery) error

	// FindByID retrieves a single delivery by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Delivery, error)

	// FindByOrder retrieves the delivery record of an order, if any.
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*entity.Delivery, error)

	// FindByAgent lists the deliveries assigned to one agent, newest first.
	FindByAgent(ctx context.Context, agentID uuid.UUID) ([]*entity.Delivery, error)

	// Update modifies an existing delivery record.
	Update(ctx context.Context, delivery *entity.Delivery) error
}
