package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoles_Effective_Priority(t *testing.T) {
	tests := []struct {
		name  string
		roles Roles
		want  Role
	}{
		{name: "empty set defaults to customer", roles: Roles{}, want: RoleCustomer},
		{name: "single customer", roles: Roles{RoleCustomer}, want: RoleCustomer},
		{name: "admin beats everything", roles: Roles{RoleCustomer, RoleDeliveryAgent, RolePharmacy, RoleAdmin}, want: RoleAdmin},
		{name: "pharmacy beats agent", roles: Roles{RoleDeliveryAgent, RolePharmacy}, want: RolePharmacy},
		{name: "agent beats customer", roles: Roles{RoleCustomer, RoleDeliveryAgent}, want: RoleDeliveryAgent},
		{name: "order of grants is irrelevant", roles: Roles{RoleAdmin, RoleCustomer}, want: RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.roles.Effective())
		})
	}
}

func TestRoles_Add_IsIdempotent(t *testing.T) {
	roles := Roles{RoleCustomer}

	roles = roles.Add(RolePharmacy)
	roles = roles.Add(RolePharmacy)
	roles = roles.Add(RoleCustomer)

	assert.Len(t, roles, 2)
	assert.True(t, roles.Contains(RoleCustomer))
	assert.True(t, roles.Contains(RolePharmacy))
}

func TestRole_IsValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RolePharmacy, RoleDeliveryAgent, RoleCustomer} {
		assert.True(t, r.IsValid(), r)
	}

	assert.False(t, RoleUnknown.IsValid(), "unknown is a resolution outcome, not grantable")
	assert.False(t, Role("merchant").IsValid())
}

func TestRolesFromStrings_FiltersInvalid(t *testing.T) {
	roles := RolesFromStrings([]string{"admin", "bogus", "customer", "unknown"})

	assert.Equal(t, Roles{RoleAdmin, RoleCustomer}, roles)
}
