package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-rating/internal/auth"
	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/model"
)

func newCreds(t *testing.T) *auth.Credentials {
	t.Helper()
	c, err := auth.NewCredentials(auth.Options{Secret: "test-secret", SessionTTL: time.Hour, BcryptCost: 4})
	require.NoError(t, err)
	return c
}

// newProtected wires Authenticate (and optionally RequireRole) in front of a
// handler that echoes the identity it sees.
func newProtected(creds *auth.Credentials, roles ...model.Role) *echo.Echo {
	e := echo.New()
	mws := []echo.MiddlewareFunc{Authenticate(creds)}
	if len(roles) > 0 {
		mws = append(mws, RequireRole(roles...))
	}
	e.GET("/private", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"id": UserID(c), "role": Role(c)})
	}, mws...)
	return e
}

func TestAuthenticateMissingToken(t *testing.T) {
	e := newProtected(newCreds(t))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"unauthenticated"`)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	e := newProtected(newCreds(t))
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(TokenHeader, "not-a-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"invalid_token"`)
}

func TestAuthenticateAcceptsBothHeaders(t *testing.T) {
	creds := newCreds(t)
	sess, err := creds.IssueSession(42, model.RoleStoreOwner)
	require.NoError(t, err)
	e := newProtected(creds)

	for name, set := range map[string]func(*http.Request){
		"x-auth-token": func(r *http.Request) { r.Header.Set(TokenHeader, sess.Token) },
		"bearer":       func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+sess.Token) },
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			set(req)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"id":42,"role":"store_owner"}`, rec.Body.String())
		})
	}
}

func TestRequireRole(t *testing.T) {
	creds := newCreds(t)
	e := newProtected(creds, model.RoleAdmin)

	for role, want := range map[model.Role]int{
		model.RoleNormalUser: http.StatusForbidden,
		model.RoleStoreOwner: http.StatusForbidden,
		model.RoleAdmin:      http.StatusOK,
	} {
		sess, err := creds.IssueSession(1, role)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set(TokenHeader, sess.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}

func TestIdentityUnauthenticated(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Zero(t, UserID(c))
	assert.Equal(t, model.Role(""), Role(c))
	assert.Equal(t, "anon", currentUserID(c))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/auth/login")
	c.Set(userIDKey, uint64(7))

	cfg := config.RateLimitConfig{Prefix: "rl"}
	for strategy, want := range map[string]string{
		"ip":         "rl:ip:10.0.0.1",
		"user":       "rl:user:7",
		"ip_route":   "rl:ip:10.0.0.1:route:POST /api/auth/login",
		"user_route": "rl:user:7:route:POST /api/auth/login",
		"":           "rl:ip:10.0.0.1:user:7:route:POST /api/auth/login",
	} {
		cfg.KeyStrategy = strategy
		assert.Equal(t, want, buildRateKey(cfg, c), strategy)
	}
}

func TestDecisionApplyBlocks(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	called := false
	next := func(echo.Context) error { called = true; return nil }

	d, ok := parseDecision([]any{int64(0), int64(0), int64(1500)})
	require.True(t, ok)
	require.NoError(t, d.apply(c, config.RateLimitConfig{Capacity: 10}, "k", next))

	assert.False(t, called)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
	assert.Contains(t, rec.Body.String(), `"error":"too_many_requests"`)
}

func TestDecisionApplyAllows(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	called := false

	d, ok := parseDecision([]any{int64(1), int64(9), int64(0)})
	require.True(t, ok)
	require.NoError(t, d.apply(c, config.RateLimitConfig{Capacity: 10}, "k", func(echo.Context) error {
		called = true
		return nil
	}))
	assert.True(t, called)
	assert.Equal(t, "9", rec.Header().Get("X-RateLimit-Remaining"))

	_, ok = parseDecision("garbage")
	assert.False(t, ok)
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)
	called := false
	h := mw(func(echo.Context) error { called = true; return nil })
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	require.NoError(t, h(c))
	assert.True(t, called)
}
