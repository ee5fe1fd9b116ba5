package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upsertPattern = "INSERT INTO ratings (user_id, store_id, rating) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE rating = VALUES(rating)"

func TestRatingUpsertReadsBackInTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Now().UTC().Add(-time.Hour)
	updated := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertPattern)).
		WithArgs(uint64(7), uint64(3), 2).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`FROM ratings WHERE user_id = \? AND store_id = \?`).
		WithArgs(uint64(7), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "store_id", "rating", "created_at", "updated_at"}).
			AddRow(40, 7, 3, 2, created, updated))
	mock.ExpectCommit()

	r, err := NewRatingRepo(db).Upsert(context.Background(), 7, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), r.ID)
	assert.Equal(t, 2, r.Value)
	assert.Equal(t, created, r.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingUpsertUnknownStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertPattern)).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "foreign key constraint fails"})
	mock.ExpectRollback()

	_, err = NewRatingRepo(db).Upsert(context.Background(), 7, 999, 4)
	assert.ErrorIs(t, err, ErrUnknownReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingUpsertRejectsOutOfRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, v := range []int{0, 6, -1} {
		_, err := NewRatingRepo(db).Upsert(context.Background(), 1, 1, v)
		assert.Error(t, err)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
