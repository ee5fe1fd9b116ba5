package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/store-rating/internal/model"
)

// RatingRepo writes ratings.  Reads of ratings happen through the store,
// user and dashboard aggregates.
type RatingRepo struct {
	db *sql.DB
}

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

// Upsert stores value as userID's rating of storeID.  The write is a single
// INSERT ... ON DUPLICATE KEY UPDATE against the (user_id, store_id) unique
// key, so concurrent submissions for the same pair never create a second
// row; the last commit wins.  The stored row is read back inside the same
// transaction.  A store that does not exist yields ErrUnknownReference.
func (r *RatingRepo) Upsert(ctx context.Context, userID, storeID uint64, value int) (model.Rating, error) {
	if !model.ValidRating(value) {
		return model.Rating{}, fmt.Errorf("upsert rating: value %d out of range", value)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Rating{}, fmt.Errorf("begin rating tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const qUpsert = `INSERT INTO ratings (user_id, store_id, rating) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE rating = VALUES(rating), updated_at = CURRENT_TIMESTAMP`
	if _, err := tx.ExecContext(ctx, qUpsert, userID, storeID, value); err != nil {
		if isMissingReference(err) {
			return model.Rating{}, ErrUnknownReference
		}
		return model.Rating{}, fmt.Errorf("upsert rating: %w", err)
	}

	const qSelect = `SELECT id, user_id, store_id, rating, created_at, updated_at
		FROM ratings WHERE user_id = ? AND store_id = ?`
	var out model.Rating
	if err := tx.QueryRowContext(ctx, qSelect, userID, storeID).Scan(
		&out.ID, &out.UserID, &out.StoreID, &out.Value, &out.CreatedAt, &out.UpdatedAt,
	); err != nil {
		return model.Rating{}, fmt.Errorf("read back rating: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Rating{}, fmt.Errorf("commit rating: %w", err)
	}
	committed = true
	return out, nil
}
