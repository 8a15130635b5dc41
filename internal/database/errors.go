// ABOUTME: Classification of store-level errors returned by the drivers
// ABOUTME: Recognises constraint violations from Postgres and SQLite

package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsConstraintViolation reports whether err was caused by the store rejecting
// a write because of a constraint (unique, not null, foreign key, check).
func IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23: integrity constraint violation
		return strings.HasPrefix(pgErr.Code, "23")
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// Extended result codes carry the primary code in the low byte.
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}

	return false
}
