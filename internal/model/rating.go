package model

import "time"

// Rating bounds.  Values outside [MinRating, MaxRating] are rejected before
// anything reaches the database.
const (
	MinRating = 1
	MaxRating = 5
)

// Rating represents a row in the `ratings` table.  The pair (UserID,
// StoreID) is unique, so a user has at most one rating per store.
type Rating struct {
	ID        uint64    // ratings.id
	UserID    uint64    // ratings.user_id
	StoreID   uint64    // ratings.store_id
	Value     int       // ratings.rating, 1..5
	CreatedAt time.Time // ratings.created_at
	UpdatedAt time.Time // ratings.updated_at
}

// ValidRating reports whether v is an acceptable star value.
func ValidRating(v int) bool { return v >= MinRating && v <= MaxRating }
