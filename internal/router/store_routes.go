package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/auth"
	"github.com/iliyamo/store-rating/internal/handler"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/model"
)

// RegisterStores registers store endpoints under /api/stores.  Every route
// requires a session; creation is limited to administrators and the
// dashboard to store owners.
func RegisterStores(e *echo.Echo, h *handler.StoreHandler, creds *auth.Credentials) {
	g := e.Group("/api/stores", middleware.Authenticate(creds))
	g.GET("", h.List)
	g.POST("", h.Create, middleware.RequireRole(model.RoleAdmin))
	g.POST("/:id/ratings", h.Rate)
	g.GET("/owner/dashboard", h.OwnerDashboard, middleware.RequireRole(model.RoleStoreOwner))
}
