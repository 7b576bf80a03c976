package middleware

import (
	"pharmahub/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// GetUserID returns the authenticated user's ID stored by Authenticate.
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get("userID").(uuid.UUID)

	return userID, ok
}

// GetRoles returns the authenticated user's roles stored by Authenticate.
func GetRoles(c echo.Context) (entity.Roles, bool) {
	raw, ok := c.Get("roles").([]string)
	if !ok {
		return nil, false
	}

	roles := make(entity.Roles, 0, len(raw))
	for _, r := range raw {
		roles = append(roles, entity.Role(r))
	}

	return roles, true
}
