package entity

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus is the fulfillment state of a delivery record. It is a
// separate machine from OrderStatus: the two track the same real-world
// process from different vantage points and are not coupled by constraint.
type DeliveryStatus string

const (
	// DeliveryPending means the delivery exists but the agent has not picked up.
	DeliveryPending DeliveryStatus = "pending"
	// DeliveryInTransit means the assigned agent reported pickup.
	DeliveryInTransit DeliveryStatus = "in_transit"
	// DeliveryDelivered is the terminal status; DeliveredAt is stamped with it.
	DeliveryDelivered DeliveryStatus = "delivered"
)

// String returns the string representation of the DeliveryStatus.
func (s DeliveryStatus) String() string {
	return string(s)
}

// IsValid checks if the DeliveryStatus is a valid value.
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryPending, DeliveryInTransit, DeliveryDelivered:
		return true
	default:
		return false
	}
}

// Next returns the following status in the linear pending -> in_transit ->
// delivered progression, and false when s is terminal.
func (s DeliveryStatus) Next() (DeliveryStatus, bool) {
	switch s {
	case DeliveryPending:
		return DeliveryInTransit, true
	case DeliveryInTransit:
		return DeliveryDelivered, true
	default:
		return s, false
	}
}

// CanTransition reports whether the actor role may move a delivery from s to
// the target status. Agents walk the linear progression one step at a time;
// admins may set any of the three values.
func (s DeliveryStatus) CanTransition(target DeliveryStatus, actor Role) bool {
	if !target.IsValid() || s == target {
		return false
	}

	switch actor {
	case RoleAdmin:
		return true
	case RoleDeliveryAgent:
		next, ok := s.Next()

		return ok && next == target
	default:
		return false
	}
}

// Delivery is the transport-tracking companion of an order. It is created by
// an admin when dispatch is arranged, so an order may exist without one.
//
// The two confirmation flags are an advisory audit trail recorded by the
// admin and the pharmacy independently. Neither flag gates a status
// transition: a delivery can legitimately reach delivered with zero
// confirmations on record.
type Delivery struct {
	ID                  uuid.UUID      // The unique ID of the delivery record.
	OrderID             uuid.UUID      // The tracked order, exactly one delivery per order.
	Status              DeliveryStatus // pending / in_transit / delivered.
	AgentID             *uuid.UUID     // The assigned delivery agent, nil until an admin assigns one.
	ConfirmedByAdmin    bool           // One-way flag set by an admin, never unset.
	ConfirmedByPharmacy bool           // One-way flag set by the order's pharmacy at pickup.
	DeliveredAt         *time.Time     // Non-nil exactly when Status is delivered.
	CreatedAt           time.Time      // Timestamp of when dispatch was arranged.
	UpdatedAt           time.Time      // Timestamp of the last modification.
}

// IsAssignedTo reports whether the given user is the assigned agent.
func (d *Delivery) IsAssignedTo(userID uuid.UUID) bool {
	return d.AgentID != nil && *d.AgentID == userID
}
