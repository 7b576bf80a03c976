// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing a unique "person" or "account".
// It contains only the most fundamental identity information shared across all roles.
type User struct {
	ID        uuid.UUID // The Global Unique Identifier (GUID) for the user.
	Email     string    // The user's primary contact email, often used as a login identifier.
	Name      string    // The user's display name or real name.
	Profile   *Profile  // A pointer to the personal-details profile, seeded at signup. Nil only for legacy rows.
	Roles     Roles     // The set of role assignments held by this user. A user may hold several at once.
	CreatedAt time.Time // Timestamp of when this user account was created.
	UpdatedAt time.Time // Timestamp of the last modification to this user's data.
}

// EffectiveRole returns the single display role for this user, picked by the
// fixed precedence order. It never returns RoleUnknown: an empty assignment
// set resolves to customer.
func (u *User) EffectiveRole() Role {
	return u.Roles.Effective()
}

// Profile holds free-form personal details, 1:1 with a User.
// It is created automatically alongside the user account.
type Profile struct {
	UserID    uuid.UUID  // Foreign Key that links this profile to a core User entity.
	FullName  string     // The legal or preferred full name, may differ from User.Name.
	Phone     string     // Contact phone number.
	Address   string     // Default address used to prefill the checkout form.
	BirthDate *time.Time // Optional date of birth.
	UpdatedAt time.Time  // Timestamp of the last modification to this profile.
}
