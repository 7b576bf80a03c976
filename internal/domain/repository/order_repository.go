package repository

import (
	"context"
	"errors"

	"pharmahub/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrOrderNotFound is returned when an order is not found.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the standard operations for order persistence.
type OrderRepository interface {
	// Create persists a new order together with all of its line items in the
	// current transaction.
	Create(ctx context.Context, order *entity.Order) error

	// FindByID retrieves a single order with its items.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	// FindByCustomer lists a customer's orders, newest first.
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]*entity.Order, error)

	// FindByPharmacy lists the orders placed against one pharmacy, newest first.
	FindByPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]*entity.Order, error)

	// FindAll lists every order, newest first. Admin view only.
	FindAll(ctx context.Context) ([]*entity.Order, error)

	// UpdateStatus sets the order status. Transition validity is the
	// service layer's responsibility; the repository only writes.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status entity.OrderStatus) error
}
