package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/auth"
)

// TokenHeader is the header clients send their session token in.  A standard
// "Authorization: Bearer <token>" header is accepted as a fallback.
const TokenHeader = "x-auth-token"

// Authenticate returns an Echo middleware that verifies the session token and
// injects the caller's identity into the request context.  Handlers read it
// back through UserID and Role.
func Authenticate(creds *auth.Credentials) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFrom(c.Request())
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error":   "unauthenticated",
					"message": "no token, authorization denied",
				})
			}
			claims, err := creds.VerifySession(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error":   "invalid_token",
					"message": "token is not valid",
				})
			}
			c.Set(userIDKey, claims.UserID)
			c.Set(roleKey, claims.Role)
			return next(c)
		}
	}
}

func tokenFrom(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(TokenHeader)); t != "" {
		return t
	}
	h := r.Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
