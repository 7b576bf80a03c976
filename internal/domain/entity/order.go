package entity

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	// OrderPending is the initial status of every order a customer places.
	OrderPending OrderStatus = "pending"
	// OrderApproved means the pharmacy accepted the order.
	OrderApproved OrderStatus = "approved"
	// OrderProcessing means the pharmacy is preparing the order.
	OrderProcessing OrderStatus = "processing"
	// OrderShipped means the order left the pharmacy.
	OrderShipped OrderStatus = "shipped"
	// OrderDelivered is the terminal success status.
	OrderDelivered OrderStatus = "delivered"
	// OrderCancelled is the terminal failure status.
	OrderCancelled OrderStatus = "cancelled"
)

// String returns the string representation of the OrderStatus.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid checks if the OrderStatus is a valid value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderApproved, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	default:
		return false
	}
}

// pharmacyOrderTransitions is the transition table for the pharmacy that owns
// the order. The processing and shipped hops are optional: a pharmacy may
// jump straight from approved to delivered for counter pickup.
var pharmacyOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderApproved, OrderCancelled},
	OrderApproved:   {OrderProcessing, OrderDelivered},
	OrderProcessing: {OrderShipped},
	OrderShipped:    {OrderDelivered},
}

// CanTransition reports whether the actor role may move an order from s to
// the target status. This single table backs every mutation path; the UI is
// never trusted to only offer valid buttons.
//
//   - customers create orders but never change their status
//   - the owning pharmacy follows pharmacyOrderTransitions
//   - admins may force any change between distinct statuses
func (s OrderStatus) CanTransition(target OrderStatus, actor Role) bool {
	if !target.IsValid() || s == target {
		return false
	}

	switch actor {
	case RoleAdmin:
		return true
	case RolePharmacy:
		for _, allowed := range pharmacyOrderTransitions[s] {
			if allowed == target {
				return true
			}
		}

		return false
	default:
		return false
	}
}

// Order is a customer's purchase commitment against exactly one pharmacy.
type Order struct {
	ID              uuid.UUID   // The unique ID of the order.
	CustomerID      uuid.UUID   // The user who placed the order.
	PharmacyID      uuid.UUID   // The pharmacy fulfilling the order.
	Status          OrderStatus // Current lifecycle status.
	TotalCents      int64       // Always equals the sum of the item totals, fixed at creation.
	DeliveryAddress string      // Required free-text shipping address.
	Notes           string      // Optional customer notes.
	Items           []*OrderItem
	CreatedAt       time.Time // Timestamp of when the order was placed.
	UpdatedAt       time.Time // Timestamp of the last status change.
}

// OrderItem is a single line of an order. The unit price is a snapshot of the
// product price at order time and is never re-read from the catalog, so
// historical orders keep their original pricing.
type OrderItem struct {
	ID             uuid.UUID // The unique ID of the order line.
	OrderID        uuid.UUID // The parent order.
	ProductID      uuid.UUID // The ordered product; must belong to the order's pharmacy.
	ProductName    string    // Name snapshot for display after the product changes or disappears.
	Quantity       int       // Ordered units, always positive.
	UnitPriceCents int64     // Price snapshot in minor currency units.
	TotalCents     int64     // Quantity multiplied by the unit price.
	CreatedAt      time.Time // Timestamp of creation; lines are immutable afterwards.
}
