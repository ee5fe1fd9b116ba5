package model

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Role is the permission tier of a user.  Only the three values below are
// valid; every boundary that accepts a role from outside (registration,
// admin user creation, list filters, session decoding) goes through
// ParseRole.
type Role string

const (
	RoleNormalUser Role = "normal_user"
	RoleStoreOwner Role = "store_owner"
	RoleAdmin      Role = "system_administrator"
)

// Roles lists every valid role in a stable order.
var Roles = []Role{RoleNormalUser, RoleStoreOwner, RoleAdmin}

// ParseRole validates a raw role string.  Matching is exact after trimming
// surrounding whitespace.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if r.Valid() {
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleNormalUser, RoleStoreOwner, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// NormalizeEmail lower-cases and trims an email address.  Emails are stored
// and compared only in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User represents a row in the `users` table.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hash; never serialized to clients.
//	Address      – optional postal address.
//	Role         – permission tier.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64         // users.id
	Name         string         // users.name
	Email        string         // users.email
	PasswordHash string         // users.password_hash
	Address      sql.NullString // users.address (nullable)
	Role         Role           // users.role
	CreatedAt    time.Time      // users.created_at
	UpdatedAt    time.Time      // users.updated_at
}
