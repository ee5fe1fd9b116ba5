// Package auth is the credential service: password hashing and signed
// session tokens.  The signing secret is supplied at construction; nothing
// in this package reads the environment.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/store-rating/internal/model"
)

// ErrInvalidToken is returned for any token that is malformed, expired,
// signed with a different key or algorithm, or carries unusable claims.
var ErrInvalidToken = errors.New("invalid token")

// Options configures a Credentials value.
type Options struct {
	Secret     string        // HMAC key for session tokens
	SessionTTL time.Duration // lifetime of issued sessions
	BcryptCost int           // bcrypt cost; bcrypt.DefaultCost when out of range
}

// Credentials hashes passwords and issues/verifies session tokens.  It is
// immutable after construction and safe for concurrent use.
type Credentials struct {
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// NewCredentials builds the credential service.  An empty secret is refused
// because it would make every token forgeable.
func NewCredentials(opts Options) (*Credentials, error) {
	if opts.Secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	if opts.SessionTTL <= 0 {
		return nil, errors.New("auth: session ttl must be positive")
	}
	cost := opts.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Credentials{
		secret: []byte(opts.Secret),
		ttl:    opts.SessionTTL,
		cost:   cost,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Claims is the decoded session: who the caller is and which tier they act in.
type Claims struct {
	UserID uint64     `json:"uid"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session is a signed token together with its expiry.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueSession signs an HS256 token carrying the user id and role.
func (c *Credentials) IssueSession(userID uint64, role model.Role) (Session, error) {
	if userID == 0 || !role.Valid() {
		return Session{}, errors.New("auth: refusing to issue session for invalid identity")
	}
	now := c.now()
	exp := now.Add(c.ttl)
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: signed, ExpiresAt: exp}, nil
}

// VerifySession parses and validates a token.  Every failure collapses into
// ErrInvalidToken so callers cannot leak parser details to clients.
func (c *Credentials) VerifySession(token string) (Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.UserID == 0 || !claims.Role.Valid() {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
