// Package router builds the echo instance and registers every HTTP route.
package router

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/store-rating/internal/auth"
	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/handler"
	"github.com/iliyamo/store-rating/internal/logging"
	"github.com/iliyamo/store-rating/internal/metrics"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/service"
)

// Deps is everything the HTTP layer needs.  Redis and Events may be nil; the
// rate limiter then passes every request and rating events are dropped.
type Deps struct {
	DB        *sql.DB
	Creds     *auth.Credentials
	Log       *logrus.Logger
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Events    service.EventPublisher
}

// New returns a fully wired echo instance.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(logging.Middleware(d.Log))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, middleware.TokenHeader,
		},
	}))

	users := repository.NewUserRepo(d.DB)
	stores := repository.NewStoreRepo(d.DB)
	ratings := repository.NewRatingRepo(d.DB)
	dash := repository.NewDashboardRepo(d.DB)

	RegisterRoutes(e, d.DB)
	RegisterAuth(e, handler.NewAuthHandler(d.Creds, users), d.Creds, middleware.NewTokenBucket(d.RateLimit, d.Redis))
	RegisterStores(e, handler.NewStoreHandler(stores, ratings, dash, d.Events), d.Creds)
	RegisterUsers(e, handler.NewUserHandler(d.Creds, users, dash), d.Creds)
	return e
}

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", metrics.Handler())
}

// RegisterAuth registers the authentication routes under /api/auth.  Register
// and login are public but rate limited; the rest need a session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, creds *auth.Credentials, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	authed := g.Group("", middleware.Authenticate(creds))
	authed.PUT("/update-password", a.UpdatePassword)
	authed.GET("/me", a.Me)
}
