package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-rating/internal/auth"
	"github.com/iliyamo/store-rating/internal/logging"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/queue"
	"github.com/iliyamo/store-rating/internal/router"
)

const goodPassword = "Secret#Pass1"

var userTableColumns = []string{"id", "name", "email", "password_hash", "address", "role", "created_at", "updated_at"}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.RatingSubmittedEvent
	err    error
}

func (p *recordingPublisher) PublishRatingSubmitted(_ context.Context, ev queue.RatingSubmittedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) published() []queue.RatingSubmittedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.RatingSubmittedEvent(nil), p.events...)
}

// testEnv is a fully routed server backed by sqlmock.
type testEnv struct {
	t      *testing.T
	e      *echo.Echo
	mock   sqlmock.Sqlmock
	creds  *auth.Credentials
	events *recordingPublisher
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	creds, err := auth.NewCredentials(auth.Options{Secret: "handler-test-secret", SessionTTL: time.Hour, BcryptCost: 4})
	require.NoError(t, err)

	events := &recordingPublisher{}
	e := router.New(router.Deps{
		DB:     db,
		Creds:  creds,
		Log:    logging.NewWithWriter(io.Discard, "error", "text"),
		Events: events,
	})
	return &testEnv{t: t, e: e, mock: mock, creds: creds, events: events}
}

// do sends a request, authenticated as (id, role) when id is non-zero.
func (env *testEnv) do(method, path, body string, id uint64, role model.Role) *httptest.ResponseRecorder {
	env.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if id != 0 {
		sess, err := env.creds.IssueSession(id, role)
		require.NoError(env.t, err)
		req.Header.Set(middleware.TokenHeader, sess.Token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) hash(plain string) string {
	env.t.Helper()
	h, err := env.creds.HashPassword(plain)
	require.NoError(env.t, err)
	return h
}

func (env *testEnv) noMoreSQL() {
	env.t.Helper()
	require.NoError(env.t, env.mock.ExpectationsWereMet())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	require.Equal(t, code, decode(t, rec)["error"])
}

var errBoom = errors.New("boom")

func TestHealthAndReady(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodGet, "/healthz", "", 0, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	rec = env.do(http.MethodGet, "/readyz", "", 0, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ready", decode(t, rec)["status"])
}
