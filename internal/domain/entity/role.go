// Package entity contains the core business objects of the project.
package entity

import "slices"

// Role represents the type of role a user can have in the system.
type Role string

const (
	// RoleAdmin indicates a marketplace administrator.
	RoleAdmin Role = "admin"
	// RolePharmacy indicates a pharmacy (seller) role.
	RolePharmacy Role = "pharmacy"
	// RoleDeliveryAgent indicates a delivery agent role.
	RoleDeliveryAgent Role = "delivery_agent"
	// RoleCustomer indicates a regular customer role.
	RoleCustomer Role = "customer"

	// RoleUnknown is returned when role resolution fails. It is deliberately
	// distinct from RoleCustomer so callers can tell "we could not check" from
	// "this user has no privileged role" and refuse privileged actions instead
	// of silently downgrading.
	RoleUnknown Role = "unknown"
)

// rolePriority fixes the display precedence when a user holds several roles.
// Lower value wins.
var rolePriority = map[Role]int{
	RoleAdmin:         0,
	RolePharmacy:      1,
	RoleDeliveryAgent: 2,
	RoleCustomer:      3,
}

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid, grantable value.
// RoleUnknown is a resolution outcome, not a grantable role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RolePharmacy, RoleDeliveryAgent, RoleCustomer:
		return true
	default:
		return false
	}
}

// Roles is a slice of Role for convenience.
type Roles []Role

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

// Add returns the roles with the given role appended, skipping duplicates.
// Granting an already-held role is a no-op.
func (rs Roles) Add(role Role) Roles {
	if rs.Contains(role) {
		return rs
	}

	return append(rs, role)
}

// Effective picks the single role shown when a user holds several, by the
// fixed precedence admin > pharmacy > delivery_agent > customer. An empty
// set resolves to customer.
func (rs Roles) Effective() Role {
	effective := RoleCustomer
	best := rolePriority[RoleCustomer]
	for _, r := range rs {
		p, ok := rolePriority[r]
		if !ok {
			continue
		}
		if p < best {
			best = p
			effective = r
		}
	}

	return effective
}

// ToStrings converts Roles to []string for JWT compatibility.
func (rs Roles) ToStrings() []string {
	result := make([]string, len(rs))
	for i, r := range rs {
		result[i] = r.String()
	}

	return result
}

// RolesFromStrings converts []string to Roles, filtering out invalid role strings.
func RolesFromStrings(ss []string) Roles {
	result := make(Roles, 0, len(ss))
	for _, s := range ss {
		role := Role(s)
		if role.IsValid() {
			result = append(result, role)
		}
	}

	return result
}
