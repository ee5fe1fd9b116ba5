package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/model"
)

// Context keys set by Authenticate.
const (
	userIDKey = "user_id"
	roleKey   = "role"
)

// UserID returns the authenticated user's id, or 0 when the request carries
// no verified identity.
func UserID(c echo.Context) uint64 {
	id, _ := c.Get(userIDKey).(uint64)
	return id
}

// Role returns the authenticated user's role, or "" when unauthenticated.
func Role(c echo.Context) model.Role {
	r, _ := c.Get(roleKey).(model.Role)
	return r
}
