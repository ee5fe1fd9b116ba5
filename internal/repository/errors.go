// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver errors themselves.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a looked-up row does not exist. Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when inserting a user whose normalized email
// is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrUnknownReference is returned when a foreign key points at a row that
// does not exist (e.g. a store owner id or a rated store id).
var ErrUnknownReference = errors.New("referenced row does not exist")

// MySQL server error numbers the repositories react to.
const (
	errDupEntry      = 1062 // ER_DUP_ENTRY
	errNoReferenced  = 1452 // ER_NO_REFERENCED_ROW_2
	errNoReferenced1 = 1216 // ER_NO_REFERENCED_ROW (older servers)
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicateKey(err error) bool { return mysqlErrNumber(err) == errDupEntry }

func isMissingReference(err error) bool {
	n := mysqlErrNumber(err)
	return n == errNoReferenced || n == errNoReferenced1
}
