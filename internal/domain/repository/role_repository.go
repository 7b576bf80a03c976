package repository

import (
	"context"

	"pharmahub/internal/domain/entity"

	"github.com/google/uuid"
)

// RoleRepository defines the operations on role assignments.
// Assignments are a set-valued relation: one row per (user, role) pair.
type RoleRepository interface {
	// FindRolesByUser returns every role assigned to the user. An empty slice
	// is a valid result and resolves to the customer role at the caller.
	FindRolesByUser(ctx context.Context, userID uuid.UUID) (entity.Roles, error)

	// GrantRole records a role assignment. Granting an already-held role is a
	// no-op, not an error, so concurrent grants cannot produce duplicates.
	GrantRole(ctx context.Context, userID uuid.UUID, role entity.Role) error

	// RevokeRole removes a role assignment if present.
	RevokeRole(ctx context.Context, userID uuid.UUID, role entity.Role) error
}
