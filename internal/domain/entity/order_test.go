package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransition_Pharmacy(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{name: "pending to approved", from: OrderPending, to: OrderApproved, allowed: true},
		{name: "pending to cancelled", from: OrderPending, to: OrderCancelled, allowed: true},
		{name: "approved to processing", from: OrderApproved, to: OrderProcessing, allowed: true},
		{name: "approved straight to delivered", from: OrderApproved, to: OrderDelivered, allowed: true},
		{name: "processing to shipped", from: OrderProcessing, to: OrderShipped, allowed: true},
		{name: "shipped to delivered", from: OrderShipped, to: OrderDelivered, allowed: true},
		{name: "pending cannot skip to delivered", from: OrderPending, to: OrderDelivered, allowed: false},
		{name: "approved cannot regress to pending", from: OrderApproved, to: OrderPending, allowed: false},
		{name: "approved cannot be cancelled by pharmacy", from: OrderApproved, to: OrderCancelled, allowed: false},
		{name: "delivered is terminal", from: OrderDelivered, to: OrderPending, allowed: false},
		{name: "cancelled is terminal", from: OrderCancelled, to: OrderApproved, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to, RolePharmacy))
		})
	}
}

func TestOrderStatus_CanTransition_Admin(t *testing.T) {
	// Admins may force any change between distinct statuses.
	assert.True(t, OrderDelivered.CanTransition(OrderPending, RoleAdmin))
	assert.True(t, OrderCancelled.CanTransition(OrderShipped, RoleAdmin))
	assert.False(t, OrderPending.CanTransition(OrderPending, RoleAdmin), "no-op transitions are rejected")
	assert.False(t, OrderPending.CanTransition(OrderStatus("lost"), RoleAdmin), "invalid target status")
}

func TestOrderStatus_CanTransition_CustomerAndAgent(t *testing.T) {
	// Customers create orders but never mutate their status; agents act only
	// on deliveries.
	for _, actor := range []Role{RoleCustomer, RoleDeliveryAgent, RoleUnknown} {
		assert.False(t, OrderPending.CanTransition(OrderApproved, actor), actor)
		assert.False(t, OrderPending.CanTransition(OrderCancelled, actor), actor)
	}
}
