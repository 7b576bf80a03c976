package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDeliveryStatus_Next(t *testing.T) {
	next, ok := DeliveryPending.Next()
	assert.True(t, ok)
	assert.Equal(t, DeliveryInTransit, next)

	next, ok = DeliveryInTransit.Next()
	assert.True(t, ok)
	assert.Equal(t, DeliveryDelivered, next)

	_, ok = DeliveryDelivered.Next()
	assert.False(t, ok, "delivered is terminal")
}

func TestDeliveryStatus_CanTransition_Agent(t *testing.T) {
	assert.True(t, DeliveryPending.CanTransition(DeliveryInTransit, RoleDeliveryAgent))
	assert.True(t, DeliveryInTransit.CanTransition(DeliveryDelivered, RoleDeliveryAgent))

	// Agents cannot skip or reverse steps.
	assert.False(t, DeliveryPending.CanTransition(DeliveryDelivered, RoleDeliveryAgent))
	assert.False(t, DeliveryInTransit.CanTransition(DeliveryPending, RoleDeliveryAgent))
	assert.False(t, DeliveryDelivered.CanTransition(DeliveryInTransit, RoleDeliveryAgent))
}

func TestDeliveryStatus_CanTransition_Admin(t *testing.T) {
	assert.True(t, DeliveryDelivered.CanTransition(DeliveryPending, RoleAdmin))
	assert.True(t, DeliveryPending.CanTransition(DeliveryDelivered, RoleAdmin))
	assert.False(t, DeliveryPending.CanTransition(DeliveryPending, RoleAdmin))
	assert.False(t, DeliveryPending.CanTransition(DeliveryStatus("returned"), RoleAdmin))
}

func TestDeliveryStatus_CanTransition_OtherRoles(t *testing.T) {
	// Pharmacies only record confirmations; they never drive the status.
	for _, actor := range []Role{RolePharmacy, RoleCustomer, RoleUnknown} {
		assert.False(t, DeliveryPending.CanTransition(DeliveryInTransit, actor), actor)
	}
}

func TestDelivery_IsAssignedTo(t *testing.T) {
	agentID := uuid.New()
	other := uuid.New()

	unassigned := &Delivery{Status: DeliveryPending}
	assert.False(t, unassigned.IsAssignedTo(agentID))

	assigned := &Delivery{Status: DeliveryPending, AgentID: &agentID}
	assert.True(t, assigned.IsAssignedTo(agentID))
	assert.False(t, assigned.IsAssignedTo(other))
}
