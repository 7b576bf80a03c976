// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"pharmahub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CheckoutItemInput is one cart line: the quantity requested of one product.
// The client never sends a price; the live catalog price is snapshotted
// server-side at checkout.
type CheckoutItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutInput defines the data required to place orders from a cart.
type CheckoutInput struct {
	Items           []CheckoutItemInput
	DeliveryAddress string
	Notes           string
}

// UpdateOrderStatusInput defines a status transition request.
type UpdateOrderStatusInput struct {
	OrderID uuid.UUID
	Status  entity.OrderStatus
}

// --- Output DTOs ---

// CheckoutResult reports the outcome of one pharmacy partition. Partitions
// are independent transactions, so some may succeed while others fail.
type CheckoutResult struct {
	PharmacyID uuid.UUID
	Order      *entity.Order // Set when the partition succeeded.
	Err        error         // Set when the partition failed.
}

// OrderUsecase defines the interface for checkout and order lifecycle operations.
type OrderUsecase interface {
	// Checkout partitions the cart by pharmacy and places one order per
	// pharmacy, each in its own transaction with atomic stock decrements.
	Checkout(ctx context.Context, customerID uuid.UUID, input CheckoutInput) ([]*CheckoutResult, error)

	// GetOrder returns one order. Customers see their own orders, pharmacies
	// the orders against them, admins everything.
	GetOrder(ctx context.Context, callerID uuid.UUID, callerRoles entity.Roles, orderID uuid.UUID) (*entity.Order, error)

	// ListMyOrders lists the calling customer's orders, newest first.
	ListMyOrders(ctx context.Context, customerID uuid.UUID) ([]*entity.Order, error)

	// ListPharmacyOrders lists the orders against the caller's pharmacy.
	ListPharmacyOrders(ctx context.Context, ownerUserID uuid.UUID) ([]*entity.Order, error)

	// ListAllOrders lists every order. Admin only.
	ListAllOrders(ctx context.Context) ([]*entity.Order, error)

	// UpdateOrderStatus applies a transition after validating it against the
	// per-actor transition table. Pharmacies may only move their own orders.
	UpdateOrderStatus(ctx context.Context, callerID uuid.UUID, actor entity.Role, input UpdateOrderStatusInput) (*entity.Order, error)
}
