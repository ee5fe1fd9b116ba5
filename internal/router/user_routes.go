package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/auth"
	"github.com/iliyamo/store-rating/internal/handler"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/model"
)

// RegisterUsers registers the administrator-only user endpoints under
// /api/users.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, creds *auth.Credentials) {
	g := e.Group(
		"/api/users",
		middleware.Authenticate(creds),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/dashboard", h.Dashboard)
	g.GET("/:id", h.Get)
}
