package model

import (
	"database/sql"
	"time"
)

// Store represents a row in the `stores` table.  OwnerID is a weak
// reference to a user; a store may be unassigned.
type Store struct {
	ID        uint64         // stores.id
	Name      string         // stores.name
	Address   sql.NullString // stores.address (nullable)
	OwnerID   sql.NullInt64  // stores.owner_id (nullable FK to users.id)
	CreatedAt time.Time      // stores.created_at
	UpdatedAt time.Time      // stores.updated_at
}
