package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DashboardRepo computes the summary figures shown on the admin and store
// owner dashboards.
type DashboardRepo struct {
	db *sql.DB
}

func NewDashboardRepo(db *sql.DB) *DashboardRepo { return &DashboardRepo{db: db} }

// Totals holds the admin dashboard counts.
type Totals struct {
	Users   int64 `json:"totalUsers"`
	Stores  int64 `json:"totalStores"`
	Ratings int64 `json:"totalRatings"`
}

// Totals runs three independent COUNT(*) queries.
func (r *DashboardRepo) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	for _, c := range []struct {
		table string
		dst   *int64
	}{
		{"users", &t.Users},
		{"stores", &t.Stores},
		{"ratings", &t.Ratings},
	} {
		// table names come from the literal list above
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return Totals{}, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return t, nil
}

// Rater is a user who rated a store.
type Rater struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// StoreFeedback is the owner-facing summary of a single store.
type StoreFeedback struct {
	Average float64 // 0 when the store has no ratings
	Raters  []Rater
}

// Feedback returns the average rating of storeID and everyone who rated it,
// in insertion order.
func (r *DashboardRepo) Feedback(ctx context.Context, storeID uint64) (StoreFeedback, error) {
	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx,
		"SELECT AVG(rating) FROM ratings WHERE store_id = ?", storeID).Scan(&avg); err != nil {
		return StoreFeedback{}, fmt.Errorf("average rating: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT u.name, u.email
		 FROM ratings r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.store_id = ?
		 ORDER BY r.id`, storeID)
	if err != nil {
		return StoreFeedback{}, fmt.Errorf("list raters: %w", err)
	}
	defer rows.Close()

	fb := StoreFeedback{Raters: make([]Rater, 0)}
	if avg.Valid {
		fb.Average = avg.Float64
	}
	for rows.Next() {
		var rt Rater
		if err := rows.Scan(&rt.Name, &rt.Email); err != nil {
			return StoreFeedback{}, fmt.Errorf("scan rater: %w", err)
		}
		fb.Raters = append(fb.Raters, rt)
	}
	if err := rows.Err(); err != nil {
		return StoreFeedback{}, err
	}
	return fb, nil
}
