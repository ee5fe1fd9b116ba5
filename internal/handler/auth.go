package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/auth"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
)

// dbTimeout bounds every storage round trip made by a handler.
const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Creds *auth.Credentials
	Users *repository.UserRepo
}

func NewAuthHandler(creds *auth.Credentials, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Creds: creds, Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" validate:"required,max=60"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,password"`
	Address  string `json:"address" validate:"max=400"`
}

func (r *registerReq) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = model.NormalizeEmail(r.Email)
	r.Address = strings.TrimSpace(r.Address)
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updatePasswordReq struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,password"`
}

type userResp struct {
	ID      uint64     `json:"id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Address *string    `json:"address"`
	Role    model.Role `json:"role"`
}

func newUserResp(u model.User) userResp {
	var addr *string
	if u.Address.Valid {
		a := u.Address.String
		addr = &a
	}
	return userResp{ID: u.ID, Name: u.Name, Email: u.Email, Address: addr, Role: u.Role}
}

// Register creates a normal_user account and returns a session for it.  Any
// role sent by the client is ignored.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if msg, ok := bindAndValidate(c, &req, req.normalize); !ok {
		return badRequest(c, msg)
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
		Role:         model.RoleNormalUser,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return errorJSON(c, http.StatusConflict, codeDuplicateEmail, "user already exists")
		}
		return serverError(c, "create user", err)
	}

	sess, err := h.Creds.IssueSession(u.ID, u.Role)
	if err != nil {
		return serverError(c, "issue session", err)
	}
	return c.JSON(http.StatusCreated, sess)
}

// Login verifies credentials and returns a fresh session.  Unknown email and
// wrong password are indistinguishable to the client.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if msg, ok := bindAndValidate(c, &req, nil); !ok {
		return badRequest(c, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errorJSON(c, http.StatusUnauthorized, codeInvalidCredentials, "invalid credentials")
		}
		return serverError(c, "load user", err)
	}
	if !h.Creds.VerifyPassword(u.PasswordHash, req.Password) {
		return errorJSON(c, http.StatusUnauthorized, codeInvalidCredentials, "invalid credentials")
	}

	sess, err := h.Creds.IssueSession(u.ID, u.Role)
	if err != nil {
		return serverError(c, "issue session", err)
	}
	return c.JSON(http.StatusOK, sess)
}

// UpdatePassword replaces the caller's password after checking the current one.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req updatePasswordReq
	if msg, ok := bindAndValidate(c, &req, nil); !ok {
		return badRequest(c, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c, "load user", err)
	}
	if !h.Creds.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return badRequest(c, "current password is incorrect")
	}

	hash, err := h.Creds.HashPassword(req.NewPassword)
	if err != nil {
		return serverError(c, "hash password", err)
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c, "update password", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "Password updated successfully"})
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c, "load user", err)
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}
