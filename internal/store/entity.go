// ABOUTME: Entity contract shared by every persistable type
// ABOUTME: Generic Decode and Load helpers built on the contract

package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/gartrix/internal/database"
)

// ErrCommit is returned when an entity could not be written
var ErrCommit = errors.New("commit failed")

// ErrConstraint is returned alongside ErrCommit when the store rejected the insert
var ErrConstraint = errors.New("constraint violation")

// idColumn is the key column every table starts with
const idColumn = "id"

// Executor is the subset of the connection handle the store needs.
// *database.Conn implements it.
type Executor interface {
	Exec(ctx context.Context, stmt string, args ...any) (int64, error)
	Query(ctx context.Context, stmt string, args ...any) ([]database.Row, error)
	QueryOne(ctx context.Context, stmt string, args ...any) (database.Row, error)
	Quote(ident string) string
}

var _ Executor = (*database.Conn)(nil)

// Entity is implemented by every type persisted as one row of one table
type Entity interface {
	// TableName is constant per type
	TableName() string
	ID() uuid.UUID
	// Columns lists the non-id columns in positional order
	Columns() []string
	// Values returns the non-id values in the same order as Columns
	Values() []any
}

// Record is an Entity that can decode itself from a row.
// T is the struct type; the pointer type implements the methods.
type Record[T any] interface {
	*T
	Entity
	// Scan decodes a row laid out as id, Columns()... into the receiver.
	// On error the receiver is left untouched.
	Scan(row database.Row) error
}

func logger() *slog.Logger {
	return slog.Default().With("component", "store")
}

// Decode converts one row into an entity. It returns false if any column is
// missing or malformed; partial entities are never returned.
func Decode[T any, P Record[T]](row database.Row) (*T, bool) {
	v := new(T)
	if err := P(v).Scan(row); err != nil {
		return nil, false
	}
	return v, true
}

// Load fetches the entity with the given id.
// It returns false when no row matches and when the row fails to decode;
// callers cannot tell the two apart.
func Load[T any, P Record[T]](ctx context.Context, db Executor, id uuid.UUID) (*T, bool) {
	proto := P(new(T))
	query := selectQuery(db, proto) + " WHERE " + db.Quote(idColumn) + " = ?"

	row, err := db.QueryOne(ctx, query, id.String())
	if err != nil {
		logger().Debug("load failed", "table", proto.TableName(), "id", id, "error", err)
		return nil, false
	}

	v, ok := Decode[T, P](row)
	if !ok {
		logger().Debug("load found undecodable row", "table", proto.TableName(), "id", id)
	}
	return v, ok
}

// selectQuery builds SELECT id, <columns> FROM <table>
func selectQuery(db Executor, e Entity) string {
	cols := make([]string, 0, len(e.Columns())+1)
	cols = append(cols, db.Quote(idColumn))
	for _, c := range e.Columns() {
		cols = append(cols, db.Quote(c))
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + db.Quote(e.TableName())
}
