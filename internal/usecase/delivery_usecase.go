// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"pharmahub/internal/domain/entity"

	"github.com/google/uuid"
)

// DeliveryUsecase defines the interface for the delivery tracking workflow.
//
// Deliveries are arranged by admins, advanced by the assigned agent one step
// at a time, and carry two independent one-way confirmation flags that never
// gate a status transition.
type DeliveryUsecase interface {
	// CreateDelivery arranges dispatch for an order. At most one delivery per
	// order; a second attempt is rejected.
	CreateDelivery(ctx context.Context, orderID uuid.UUID) (*entity.Delivery, error)

	// AssignAgent sets the delivery agent. The target user must hold the
	// delivery_agent role.
	AssignAgent(ctx context.Context, deliveryID, agentUserID uuid.UUID) (*entity.Delivery, error)

	// GetDelivery returns one delivery record. Admins may read any delivery;
	// agents only the ones assigned to them.
	GetDelivery(ctx context.Context, callerID uuid.UUID, callerRoles entity.Roles, deliveryID uuid.UUID) (*entity.Delivery, error)

	// GetDeliveryByOrder returns the delivery tracking an order, if any. The
	// caller must be allowed to read the order itself: an admin, the customer
	// who placed it, or the owner of the pharmacy it was placed against.
	GetDeliveryByOrder(ctx context.Context, callerID uuid.UUID, callerRoles entity.Roles, orderID uuid.UUID) (*entity.Delivery, error)

	// ListMyDeliveries lists the deliveries assigned to the calling agent.
	ListMyDeliveries(ctx context.Context, agentUserID uuid.UUID) ([]*entity.Delivery, error)

	// AdvanceDelivery moves the delivery one step along pending -> in_transit
	// -> delivered. Only the assigned agent may call it; reaching delivered
	// stamps DeliveredAt.
	AdvanceDelivery(ctx context.Context, agentUserID, deliveryID uuid.UUID, target entity.DeliveryStatus) (*entity.Delivery, error)

	// SetDeliveryStatus force-sets the status. Admin only; DeliveredAt is
	// stamped or cleared so it stays non-nil exactly when delivered.
	SetDeliveryStatus(ctx context.Context, deliveryID uuid.UUID, target entity.DeliveryStatus) (*entity.Delivery, error)

	// ConfirmByAdmin sets the admin confirmation flag. One-way.
	ConfirmByAdmin(ctx context.Context, deliveryID uuid.UUID) (*entity.Delivery, error)

	// ConfirmByPharmacy sets the pharmacy confirmation flag. Only the owner
	// of the order's pharmacy may call it. One-way.
	ConfirmByPharmacy(ctx context.Context, ownerUserID, deliveryID uuid.UUID) (*entity.Delivery, error)

	// HandoffQR returns a PNG QR code identifying the delivery, presented by
	// the agent and scanned at the pharmacy counter. Only the assigned agent
	// may mint it.
	HandoffQR(ctx context.Context, agentUserID, deliveryID uuid.UUID) ([]byte, error)
}
