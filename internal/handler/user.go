package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/auth"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
)

// UserHandler serves the administrator's user management and dashboard.
type UserHandler struct {
	Creds *auth.Credentials
	Users *repository.UserRepo
	Stats *repository.DashboardRepo
}

func NewUserHandler(creds *auth.Credentials, users *repository.UserRepo, dash *repository.DashboardRepo) *UserHandler {
	return &UserHandler{Creds: creds, Users: users, Stats: dash}
}

type createUserReq struct {
	registerReq
	Role string `json:"role" validate:"required"`
}

var roleList = func() string {
	names := make([]string, len(model.Roles))
	for i, r := range model.Roles {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}()

// List returns users matching the filters with the average rating of the
// stores each one owns.
func (h *UserHandler) List(c echo.Context) error {
	q := repository.UserQuery{
		Name:      c.QueryParam("name"),
		Email:     c.QueryParam("email"),
		Address:   c.QueryParam("address"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}
	if raw := c.QueryParam("role"); strings.TrimSpace(raw) != "" {
		role, err := model.ParseRole(raw)
		if err != nil {
			return badRequest(c, "role must be one of "+roleList)
		}
		q.Role = role
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Users.List(ctx, q)
	if err != nil {
		return serverError(c, "list users", err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Get returns one user in the listing shape.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return badRequest(c, "user id must be a positive integer")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	row, err := h.Users.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c, "load user", err)
	}
	return c.JSON(http.StatusOK, row)
}

// Create adds a user of any role.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if msg, ok := bindAndValidate(c, &req, req.normalize); !ok {
		return badRequest(c, msg)
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return badRequest(c, "role must be one of "+roleList)
	}

	hash, err := h.Creds.HashPassword(req.Password)
	if err != nil {
		return serverError(c, "hash password", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Create(ctx, repository.NewUser{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Address:      req.Address,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return errorJSON(c, http.StatusConflict, codeDuplicateEmail, "user already exists")
		}
		return serverError(c, "create user", err)
	}
	return c.JSON(http.StatusCreated, newUserResp(u))
}

// Dashboard returns the total number of users, stores and ratings.
func (h *UserHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Stats.Totals(ctx)
	if err != nil {
		return serverError(c, "count totals", err)
	}
	return c.JSON(http.StatusOK, t)
}
