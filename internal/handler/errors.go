package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/logging"
)

// Error codes returned in the "error" field of every failure body.
const (
	codeInvalidInput       = "invalid_input"
	codeInvalidCredentials = "invalid_credentials"
	codeDuplicateEmail     = "duplicate_email"
	codeNotFound           = "not_found"
	codeServerError        = "server_error"
)

func errorJSON(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"error": code, "message": msg})
}

func badRequest(c echo.Context, msg string) error {
	return errorJSON(c, http.StatusBadRequest, codeInvalidInput, msg)
}

func notFound(c echo.Context, msg string) error {
	return errorJSON(c, http.StatusNotFound, codeNotFound, msg)
}

// serverError logs the underlying failure against the request and returns an
// opaque 500 to the client.
func serverError(c echo.Context, op string, err error) error {
	logging.From(c).WithError(err).Error(op)
	return errorJSON(c, http.StatusInternalServerError, codeServerError, "internal server error")
}
