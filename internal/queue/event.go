// Package queue defines message payloads exchanged over the message broker
// and the worker that consumes them.
package queue

import "time"

// DefaultRatingQueue is the durable queue rating events are routed to.
const DefaultRatingQueue = "rating.submitted"

// RatingSubmittedEvent is published after a rating is stored, whether it was
// a first submission or an overwrite.  It carries enough information for
// downstream consumers to log or aggregate without querying the database.
type RatingSubmittedEvent struct {
	RatingID    uint64    `json:"rating_id"`
	UserID      uint64    `json:"user_id"`
	StoreID     uint64    `json:"store_id"`
	Rating      int       `json:"rating"`
	SubmittedAt time.Time `json:"submitted_at"`
}
