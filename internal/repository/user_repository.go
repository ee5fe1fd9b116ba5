package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/store-rating/internal/model"
)

// UserRepo mirrors the 'users' table and owns the user listing query.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// NewUser carries an already-hashed user ready for insertion.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Address      string
	Role         model.Role
}

const userColumns = "id, name, email, password_hash, address, role, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var (
		u    model.User
		role string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Address, &role, &u.CreatedAt, &u.UpdatedAt)
	u.Role = model.Role(role)
	return u, err
}

// Create inserts a user and returns the stored row.  The email is normalized
// here as well so no caller can bypass case-insensitive uniqueness; the
// unique index is what actually rejects duplicates, atomically.
func (r *UserRepo) Create(ctx context.Context, in NewUser) (model.User, error) {
	if !in.Role.Valid() {
		return model.User{}, fmt.Errorf("create user: invalid role %q", in.Role)
	}
	email := model.NormalizeEmail(in.Email)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, address, role) VALUES (?,?,?,?,?)",
		in.Name, email, in.PasswordHash, nullString(in.Address), string(in.Role))
	if err != nil {
		if isDuplicateKey(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1",
		model.NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UpdatePassword replaces the stored hash.  ErrNotFound means the user no
// longer exists.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UserQuery defines filters and ordering for the admin user listing.  Role
// is an exact match and is ignored when empty.
type UserQuery struct {
	Name      string
	Email     string
	Address   string
	Role      model.Role
	SortBy    string
	SortOrder string
}

// UserRow is one entry of the user listing.  StoreRating is the mean rating
// of the stores the user owns, 0 for users owning none.
type UserRow struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Address     *string    `json:"address"`
	Role        model.Role `json:"role"`
	StoreRating float64    `json:"store_rating"`
}

const userListingSelect = `SELECT
			u.id,
			u.name,
			u.email,
			u.address,
			u.role,
			COALESCE(AVG(r.rating), 0) AS store_rating
		FROM users u
		LEFT JOIN stores s  ON s.owner_id = u.id
		LEFT JOIN ratings r ON r.store_id = s.id`

const userListingGroup = `
		GROUP BY u.id, u.name, u.email, u.address, u.role`

func buildUserListing(q UserQuery) (string, []any) {
	f := filter{}
	f.contains("u.name", q.Name)
	f.contains("u.email", model.NormalizeEmail(q.Email))
	f.contains("u.address", q.Address)
	if q.Role != "" {
		f.add("u.role = ?", string(q.Role))
	}

	order := sortColumn(userSortColumns, q.SortBy, defaultUserSort)
	dir := sortDirection(q.SortOrder)

	stmt := userListingSelect + f.clause() + userListingGroup + `
		ORDER BY ` + order + " " + dir + ", u.id ASC"
	return stmt, f.args
}

func scanUserRows(rows *sql.Rows) ([]UserRow, error) {
	out := make([]UserRow, 0)
	for rows.Next() {
		var (
			row     UserRow
			address sql.NullString
			role    string
		)
		if err := rows.Scan(&row.ID, &row.Name, &row.Email, &address, &role, &row.StoreRating); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		row.Address = stringPtr(address)
		row.Role = model.Role(role)
		out = append(out, row)
	}
	return out, rows.Err()
}

// List returns users matching q.  No match yields an empty, non-nil slice.
func (r *UserRepo) List(ctx context.Context, q UserQuery) ([]UserRow, error) {
	stmt, args := buildUserListing(q)
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	return scanUserRows(rows)
}

// Detail returns a single listing row for id, or ErrNotFound.
func (r *UserRepo) Detail(ctx context.Context, id uint64) (UserRow, error) {
	stmt := userListingSelect + " WHERE u.id = ?" + userListingGroup
	rows, err := r.db.QueryContext(ctx, stmt, id)
	if err != nil {
		return UserRow{}, fmt.Errorf("user detail: %w", err)
	}
	defer rows.Close()
	list, err := scanUserRows(rows)
	if err != nil {
		return UserRow{}, err
	}
	if len(list) == 0 {
		return UserRow{}, ErrNotFound
	}
	return list[0], nil
}
