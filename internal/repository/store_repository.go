package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/store-rating/internal/model"
)

// StoreRepo encapsulates all database queries related to stores, including
// the aggregated store listing.
type StoreRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewStoreRepo constructs a StoreRepo with the provided DB handle.
func NewStoreRepo(db *sql.DB) *StoreRepo { return &StoreRepo{db: db} }

// NewStore carries the fields accepted when creating a store.  A nil
// OwnerID leaves the store unassigned.
type NewStore struct {
	Name    string
	Address string
	OwnerID *uint64
}

// Create inserts a store and returns the stored row.  The owner reference is
// checked only by the foreign key: any existing user id is accepted.
func (r *StoreRepo) Create(ctx context.Context, in NewStore) (model.Store, error) {
	var owner sql.NullInt64
	if in.OwnerID != nil {
		owner = sql.NullInt64{Int64: int64(*in.OwnerID), Valid: true}
	}
	const qInsert = "INSERT INTO stores (name, address, owner_id) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, in.Name, nullString(in.Address), owner)
	if err != nil {
		if isMissingReference(err) {
			return model.Store{}, ErrUnknownReference
		}
		return model.Store{}, fmt.Errorf("insert store: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Store{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a store by its ID.  It returns ErrNotFound if no row exists.
func (r *StoreRepo) GetByID(ctx context.Context, id uint64) (model.Store, error) {
	const q = "SELECT id, name, address, owner_id, created_at, updated_at FROM stores WHERE id = ?"
	var s model.Store
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.Address, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Store{}, ErrNotFound
		}
		return model.Store{}, err
	}
	return s, nil
}

// OwnedBy returns the store assigned to ownerID.  When several stores share
// an owner the oldest one wins.  ErrNotFound means no store is assigned.
func (r *StoreRepo) OwnedBy(ctx context.Context, ownerID uint64) (model.Store, error) {
	const q = `SELECT id, name, address, owner_id, created_at, updated_at
	           FROM stores WHERE owner_id = ? ORDER BY id LIMIT 1`
	var s model.Store
	if err := r.db.QueryRowContext(ctx, q, ownerID).Scan(&s.ID, &s.Name, &s.Address, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Store{}, ErrNotFound
		}
		return model.Store{}, err
	}
	return s, nil
}

// StoreQuery defines filters and ordering for the store listing.  UserID is
// the requester, whose own rating is reported per store.
type StoreQuery struct {
	Name      string
	Address   string
	SortBy    string
	SortOrder string
	UserID    uint64
}

// StoreRow is one entry of the store listing.
type StoreRow struct {
	ID                  uint64  `json:"id"`
	Name                string  `json:"name"`
	Address             *string `json:"address"`
	OwnerEmail          *string `json:"owner_email"`
	OverallRating       float64 `json:"overall_rating"`
	UserSubmittedRating *int    `json:"user_submitted_rating"`
}

// buildStoreListing renders the listing statement and its arguments.  The
// requester id is always the first argument because the correlated subquery
// precedes the WHERE clause.
func buildStoreListing(q StoreQuery) (string, []any) {
	f := filter{}
	f.contains("s.name", q.Name)
	f.contains("s.address", q.Address)

	order := sortColumn(storeSortColumns, q.SortBy, defaultStoreSort)
	dir := sortDirection(q.SortOrder)

	stmt := `SELECT
			s.id,
			s.name,
			s.address,
			u.email AS owner_email,
			COALESCE(AVG(r.rating), 0) AS overall_rating,
			(SELECT ur.rating FROM ratings ur WHERE ur.store_id = s.id AND ur.user_id = ?) AS user_submitted_rating
		FROM stores s
		LEFT JOIN users u   ON u.id = s.owner_id
		LEFT JOIN ratings r ON r.store_id = s.id` + f.clause() + `
		GROUP BY s.id, s.name, s.address, u.email
		ORDER BY ` + order + " " + dir + ", s.id ASC"

	args := append([]any{q.UserID}, f.args...)
	return stmt, args
}

// List returns stores matching q with their average rating and the
// requester's own rating.  No match yields an empty, non-nil slice.
func (r *StoreRepo) List(ctx context.Context, q StoreQuery) ([]StoreRow, error) {
	stmt, args := buildStoreListing(q)
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	out := make([]StoreRow, 0)
	for rows.Next() {
		var (
			row     StoreRow
			address sql.NullString
			email   sql.NullString
			mine    sql.NullInt64
		)
		if err := rows.Scan(&row.ID, &row.Name, &address, &email, &row.OverallRating, &mine); err != nil {
			return nil, fmt.Errorf("scan store row: %w", err)
		}
		row.Address = stringPtr(address)
		row.OwnerEmail = stringPtr(email)
		if mine.Valid {
			v := int(mine.Int64)
			row.UserSubmittedRating = &v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
