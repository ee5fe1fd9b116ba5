package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-rating/internal/model"
)

func newTestCredentials(t *testing.T, secret string) *Credentials {
	t.Helper()
	c, err := NewCredentials(Options{Secret: secret, SessionTTL: time.Hour, BcryptCost: 4})
	require.NoError(t, err)
	return c
}

func TestNewCredentialsValidatesOptions(t *testing.T) {
	_, err := NewCredentials(Options{Secret: "", SessionTTL: time.Hour})
	assert.Error(t, err)
	_, err = NewCredentials(Options{Secret: "k", SessionTTL: 0})
	assert.Error(t, err)

	c, err := NewCredentials(Options{Secret: "k", SessionTTL: time.Hour, BcryptCost: 99})
	require.NoError(t, err)
	assert.Equal(t, 10, c.cost, "out of range cost falls back to bcrypt default")
}

func TestPasswordRoundTrip(t *testing.T) {
	c := newTestCredentials(t, "k")

	hash, err := c.HashPassword("Secret#123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret#123", hash)
	assert.True(t, c.VerifyPassword(hash, "Secret#123"))
	assert.False(t, c.VerifyPassword(hash, "secret#123"))

	again, err := c.HashPassword("Secret#123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}

func TestSessionRoundTrip(t *testing.T) {
	c := newTestCredentials(t, "k")

	s, err := c.IssueSession(42, model.RoleStoreOwner)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, 5*time.Second)

	claims, err := c.VerifySession(s.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, model.RoleStoreOwner, claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestIssueSessionRejectsBadIdentity(t *testing.T) {
	c := newTestCredentials(t, "k")
	_, err := c.IssueSession(0, model.RoleAdmin)
	assert.Error(t, err)
	_, err = c.IssueSession(1, model.Role("root"))
	assert.Error(t, err)
}

func TestVerifySessionRejectsExpired(t *testing.T) {
	c := newTestCredentials(t, "k")
	c.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	s, err := c.IssueSession(7, model.RoleNormalUser)
	require.NoError(t, err)

	c.now = func() time.Time { return time.Now().UTC() }
	_, err = c.VerifySession(s.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifySessionRejectsForeignSignature(t *testing.T) {
	issuer := newTestCredentials(t, "other-secret")
	verifier := newTestCredentials(t, "k")

	s, err := issuer.IssueSession(7, model.RoleAdmin)
	require.NoError(t, err)
	_, err = verifier.VerifySession(s.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifySessionRejectsGarbageAndTampering(t *testing.T) {
	c := newTestCredentials(t, "k")
	_, err := c.VerifySession("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	s, err := c.IssueSession(7, model.RoleNormalUser)
	require.NoError(t, err)
	parts := strings.Split(s.Token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	_, err = c.VerifySession(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifySessionRejectsUnknownRoleAndNoneAlg(t *testing.T) {
	c := newTestCredentials(t, "k")

	forged := Claims{
		UserID: 7,
		Role:   model.Role("superuser"),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, forged).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = c.VerifySession(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged.Role = model.RoleAdmin
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, forged).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = c.VerifySession(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifySessionRequiresExpiry(t *testing.T) {
	c := newTestCredentials(t, "k")
	noExp := Claims{UserID: 7, Role: model.RoleAdmin}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, noExp).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = c.VerifySession(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
