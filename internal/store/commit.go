// ABOUTME: Update-or-insert of a single entity
// ABOUTME: Falls back to INSERT only when the UPDATE matched no rows

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/2389/gartrix/internal/database"
)

// Commit makes the store match e: its row is updated if it exists and
// inserted otherwise.
//
// The UPDATE runs first. Only a successful update that affected zero rows
// leads to the INSERT; an update error is returned without trying to insert.
func Commit(ctx context.Context, db Executor, e Entity) error {
	table := e.TableName()
	id := e.ID().String()
	values := e.Values()

	args := make([]any, 0, len(values)+1)
	args = append(args, values...)
	args = append(args, id)

	affected, err := db.Exec(ctx, updateStatement(db, e), args...)
	if err != nil {
		return fmt.Errorf("%w: updating %s %s: %w", ErrCommit, table, id, err)
	}

	switch {
	case affected == 1:
		logger().Debug("updated entity", "table", table, "id", id)
		return nil
	case affected > 1:
		return fmt.Errorf("%w: updating %s %s affected %d rows", ErrCommit, table, id, affected)
	}

	args = args[:0]
	args = append(args, id)
	args = append(args, values...)

	if _, err := db.Exec(ctx, insertStatement(db, e), args...); err != nil {
		if database.IsConstraintViolation(err) {
			return fmt.Errorf("%w: inserting %s %s: %w: %w", ErrCommit, table, id, ErrConstraint, err)
		}
		return fmt.Errorf("%w: inserting %s %s: %w", ErrCommit, table, id, err)
	}

	logger().Debug("inserted entity", "table", table, "id", id)
	return nil
}

// Committed is Commit reduced to success or failure. The error is logged.
func Committed(ctx context.Context, db Executor, e Entity) bool {
	if err := Commit(ctx, db, e); err != nil {
		logger().Warn("commit failed", "table", e.TableName(), "id", e.ID(), "error", err)
		return false
	}
	return true
}

// updateStatement builds UPDATE <table> SET <col> = ?, ... WHERE id = ?
func updateStatement(db Executor, e Entity) string {
	cols := e.Columns()
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = db.Quote(c) + " = ?"
	}
	return "UPDATE " + db.Quote(e.TableName()) +
		" SET " + strings.Join(sets, ", ") +
		" WHERE " + db.Quote(idColumn) + " = ?"
}

// insertStatement builds INSERT INTO <table> (id, <cols>) VALUES (?, ...)
func insertStatement(db Executor, e Entity) string {
	cols := e.Columns()
	names := make([]string, 0, len(cols)+1)
	names = append(names, db.Quote(idColumn))
	for _, c := range cols {
		names = append(names, db.Quote(c))
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	return "INSERT INTO " + db.Quote(e.TableName()) +
		" (" + strings.Join(names, ", ") + ") VALUES (" + marks + ")"
}
