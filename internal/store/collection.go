// ABOUTME: Whole-table queries over any Record type
// ABOUTME: GetAll skips undecodable rows, Count gives the raw row count

package store

import (
	"context"
	"fmt"
)

// GetAll loads every row of T's table. Rows that fail to decode are skipped,
// so the result may be shorter than the table. An error is returned only when
// the query itself fails.
func GetAll[T any, P Record[T]](ctx context.Context, db Executor) ([]*T, error) {
	proto := P(new(T))

	rows, err := db.Query(ctx, selectQuery(db, proto))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", proto.TableName(), err)
	}

	out := make([]*T, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		v, ok := Decode[T, P](row)
		if !ok {
			skipped++
			continue
		}
		out = append(out, v)
	}

	if skipped > 0 {
		logger().Debug("skipped undecodable rows", "table", proto.TableName(), "count", skipped)
	}
	return out, nil
}

// Count returns the number of rows in T's table, decodable or not.
// Comparing it with len(GetAll) reveals skipped rows.
func Count[T any, P Record[T]](ctx context.Context, db Executor) (int64, error) {
	proto := P(new(T))

	row, err := db.QueryOne(ctx, "SELECT COUNT(*) FROM "+db.Quote(proto.TableName()))
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", proto.TableName(), err)
	}

	n, err := row.Int64(0)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", proto.TableName(), err)
	}
	return n, nil
}
