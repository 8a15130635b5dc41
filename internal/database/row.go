// ABOUTME: Positional row type and typed column decoders
// ABOUTME: Each decoder fails with ErrDecode on missing, mistyped or unparseable columns

package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrDecode is returned when a column cannot be converted to the requested type
var ErrDecode = errors.New("cannot decode column")

// sqliteTimeLayout is the text layout modernc.org/sqlite writes time.Time values in
const sqliteTimeLayout = "2006-01-02 15:04:05.999999999-07:00"

// Row is one result row, columns in select order
type Row []any

func (r Row) column(i int) (any, error) {
	if i < 0 || i >= len(r) {
		return nil, fmt.Errorf("%w: column %d missing (row has %d)", ErrDecode, i, len(r))
	}
	if r[i] == nil {
		return nil, fmt.Errorf("%w: column %d is null", ErrDecode, i)
	}
	return r[i], nil
}

// String decodes column i as text
func (r Row) String(i int) (string, error) {
	v, err := r.column(i)
	if err != nil {
		return "", err
	}

	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("%w: column %d is %T, want text", ErrDecode, i, v)
	}
}

// UUID decodes column i as a textual identifier. Byte slices are read as
// text; only a typed [16]byte is taken as a binary identifier.
func (r Row) UUID(i int) (uuid.UUID, error) {
	v, err := r.column(i)
	if err != nil {
		return uuid.Nil, err
	}

	switch id := v.(type) {
	case [16]byte:
		return uuid.UUID(id), nil
	case []byte:
		v = string(id)
	}

	s, ok := v.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: column %d is %T, want identifier", ErrDecode, i, v)
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: column %d: %v", ErrDecode, i, err)
	}
	return parsed, nil
}

// Int64 decodes column i as a 64-bit integer
func (r Row) Int64(i int) (int64, error) {
	v, err := r.column(i)
	if err != nil {
		return 0, err
	}

	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%w: column %d is %T, want integer", ErrDecode, i, v)
	}
}

// Time decodes column i as a timestamp, normalised to UTC
func (r Row) Time(i int) (time.Time, error) {
	v, err := r.column(i)
	if err != nil {
		return time.Time{}, err
	}

	var s string
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return time.Time{}, fmt.Errorf("%w: column %d is %T, want timestamp", ErrDecode, i, v)
	}

	for _, layout := range []string{time.RFC3339Nano, sqliteTimeLayout} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: column %d: unparseable timestamp %q", ErrDecode, i, s)
}
