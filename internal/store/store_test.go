// ABOUTME: Tests for the entity contract against in-memory SQLite
// ABOUTME: Covers round trips, upsert behaviour, decode robustness and best-effort listing

package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/gartrix/internal/database"
)

// newTestConn opens an in-memory SQLite session with the entity tables created.
func newTestConn(t *testing.T) *database.Conn {
	t.Helper()

	conn, err := database.Open(context.Background(), "sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
	})

	require.NoError(t, CreateTables(context.Background(), conn))
	return conn
}

func countRows(t *testing.T, conn *database.Conn, table string, id uuid.UUID) int64 {
	t.Helper()
	row, err := conn.QueryOne(context.Background(), `SELECT COUNT(*) FROM `+conn.Quote(table)+` WHERE id = ?`, id.String())
	require.NoError(t, err)
	n, err := row.Int64(0)
	require.NoError(t, err)
	return n
}

func TestCreateTables_Idempotent(t *testing.T) {
	conn := newTestConn(t)
	require.NoError(t, CreateTables(context.Background(), conn))
}

func TestUserAltName_Scenario(t *testing.T) {
	checkUserAltNameScenario(t, newTestConn(t))
}

func checkUserAltNameScenario(t *testing.T, conn *database.Conn) {
	ctx := context.Background()

	user := uuid.New()
	alt := NewUserAltName(user, "alice", 1000)

	require.NoError(t, Commit(ctx, conn, alt))
	assert.Equal(t, int64(1), countRows(t, conn, "user_alt_name", alt.ID()))

	row, err := conn.QueryOne(ctx, `SELECT id, "user", nickname, added FROM user_alt_name WHERE id = ?`, alt.ID().String())
	require.NoError(t, err)
	gotID, _ := row.String(0)
	gotUser, _ := row.String(1)
	gotNick, _ := row.String(2)
	gotAdded, _ := row.Int64(3)
	assert.Equal(t, alt.ID().String(), gotID)
	assert.Equal(t, user.String(), gotUser)
	assert.Equal(t, "alice", gotNick)
	assert.Equal(t, int64(1000), gotAdded)

	alt.Nickname = "alice2"
	require.NoError(t, Commit(ctx, conn, alt))
	assert.Equal(t, int64(1), countRows(t, conn, "user_alt_name", alt.ID()))

	loaded, ok := Load[UserAltName](ctx, conn, alt.ID())
	require.True(t, ok)
	assert.Equal(t, "alice2", loaded.Nickname)
	assert.Equal(t, user, loaded.User)
	assert.Equal(t, int64(1000), loaded.Added)
}

func TestCommit_Idempotent(t *testing.T) {
	checkCommitIdempotent(t, newTestConn(t))
}

func checkCommitIdempotent(t *testing.T, conn *database.Conn) {
	ctx := context.Background()

	dev := NewDevice(uuid.New(), "laptop")
	require.NoError(t, Commit(ctx, conn, dev))

	dev.Name = "phone"
	require.NoError(t, Commit(ctx, conn, dev))
	require.NoError(t, Commit(ctx, conn, dev))

	assert.Equal(t, int64(1), countRows(t, conn, "devices", dev.ID()))

	loaded, ok := Load[Device](ctx, conn, dev.ID())
	require.True(t, ok)
	assert.Equal(t, "phone", loaded.Name)
}

func TestRoundTrip_AllEntities(t *testing.T) {
	checkRoundTripAllEntities(t, newTestConn(t))
}

func checkRoundTripAllEntities(t *testing.T, conn *database.Conn) {
	ctx := context.Background()
	owner := uuid.New()

	user, err := NewUser("gandalf", "mellon")
	require.NoError(t, err)
	require.True(t, Committed(ctx, conn, user))
	gotUser, ok := Load[User](ctx, conn, user.ID())
	require.True(t, ok)
	assert.Equal(t, user, gotUser)

	dev := NewDevice(owner, "tablet")
	require.True(t, Committed(ctx, conn, dev))
	gotDev, ok := Load[Device](ctx, conn, dev.ID())
	require.True(t, ok)
	assert.Equal(t, dev, gotDev)

	msg := NewMessage(owner, "hello *world*", time.Date(2024, 5, 17, 8, 0, 1, 500, time.UTC))
	require.True(t, Committed(ctx, conn, msg))
	gotMsg, ok := Load[Message](ctx, conn, msg.ID())
	require.True(t, ok)
	assert.Equal(t, msg.ID(), gotMsg.ID())
	assert.Equal(t, msg.User, gotMsg.User)
	assert.Equal(t, msg.Body, gotMsg.Body)
	assert.True(t, msg.Date.Equal(gotMsg.Date), "date: got %v, want %v", gotMsg.Date, msg.Date)

	alt := NewUserAltName(owner, "mithrandir", -42)
	require.True(t, Committed(ctx, conn, alt))
	gotAlt, ok := Load[UserAltName](ctx, conn, alt.ID())
	require.True(t, ok)
	assert.Equal(t, alt, gotAlt)
}

func TestLoad_NotFoundAndMalformedAreIndistinguishable(t *testing.T) {
	conn := newTestConn(t)
	ctx := context.Background()

	// Missing row.
	missing, ok := Load[Device](ctx, conn, uuid.New())
	assert.False(t, ok)
	assert.Nil(t, missing)

	// Row whose user column is not an identifier.
	id := uuid.New()
	_, err := conn.Exec(ctx, `INSERT INTO devices (id, "user", name) VALUES (?, ?, ?)`, id.String(), "not-a-uuid", "broken")
	require.NoError(t, err)

	malformed, ok := Load[Device](ctx, conn, id)
	assert.False(t, ok)
	assert.Nil(t, malformed)
}

func TestDecode(t *testing.T) {
	id := uuid.New()
	user := uuid.New()

	alt, ok := Decode[UserAltName](database.Row{id.String(), user.String(), "alice", int64(1000)})
	require.True(t, ok)
	assert.Equal(t, id, alt.ID())
	assert.Equal(t, user, alt.User)
	assert.Equal(t, "alice", alt.Nickname)
	assert.Equal(t, int64(1000), alt.Added)

	bad := []database.Row{
		{"not-a-uuid", user.String(), "alice", int64(1000)},
		{id.String(), "nope", "alice", int64(1000)},
		{id.String(), user.String(), int64(5), int64(1000)},
		{id.String(), user.String(), "alice", "1000"},
		{id.String(), user.String(), "alice"},
		{},
	}
	for i, row := range bad {
		got, ok := Decode[UserAltName](row)
		assert.False(t, ok, "row %d", i)
		assert.Nil(t, got, "row %d", i)
	}
}

func TestScan_LeavesReceiverUntouchedOnError(t *testing.T) {
	dev := NewDevice(uuid.New(), "keep")
	before := *dev

	err := dev.Scan(database.Row{uuid.New().String(), uuid.New().String(), nil})
	require.ErrorIs(t, err, database.ErrDecode)
	assert.Equal(t, before, *dev)
}

func TestGetAll_SkipsUndecodableRows(t *testing.T) {
	conn := newTestConn(t)
	ctx := context.Background()
	owner := uuid.New()

	const valid = 4
	for i := 0; i < valid; i++ {
		require.NoError(t, Commit(ctx, conn, NewUserAltName(owner, "nick", int64(i))))
	}

	badRows := [][]any{
		{"not-a-uuid", owner.String(), "bad id", 1},
		{uuid.New().String(), "bad-user", "bad user", 2},
		{uuid.New().String(), owner.String(), "bad added", "soon"},
	}
	for _, r := range badRows {
		_, err := conn.Exec(ctx, `INSERT INTO user_alt_name (id, "user", nickname, added) VALUES (?, ?, ?, ?)`, r...)
		require.NoError(t, err)
	}

	all, err := GetAll[UserAltName](ctx, conn)
	require.NoError(t, err)
	assert.Len(t, all, valid)
	for _, a := range all {
		assert.Equal(t, owner, a.User)
		assert.Equal(t, "nick", a.Nickname)
	}

	total, err := Count[UserAltName](ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, int64(valid+len(badRows)), total)
}

func TestGetAll_SkipsBlobIdentifiers(t *testing.T) {
	conn := newTestConn(t)
	ctx := context.Background()
	owner := uuid.New()

	good := NewDevice(owner, "laptop")
	require.NoError(t, Commit(ctx, conn, good))

	blobID := uuid.New()
	for _, id := range [][]byte{[]byte("not-a-uuid-text!"), blobID[:]} {
		_, err := conn.Exec(ctx, `INSERT INTO devices (id, "user", name) VALUES (?, ?, ?)`, id, owner.String(), "blob-id")
		require.NoError(t, err)
	}

	all, err := GetAll[Device](ctx, conn)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, good.ID(), all[0].ID())

	total, err := Count[Device](ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestGetAll_Empty(t *testing.T) {
	conn := newTestConn(t)

	all, err := GetAll[Message](context.Background(), conn)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetAll_QueryFailure(t *testing.T) {
	conn := newTestConn(t)
	ctx := context.Background()

	_, err := conn.Exec(ctx, `DROP TABLE devices`)
	require.NoError(t, err)

	all, err := GetAll[Device](ctx, conn)
	assert.Error(t, err)
	assert.Nil(t, all)

	_, err = Count[Device](ctx, conn)
	assert.Error(t, err)
}

func TestCommit_InsertConstraintViolation(t *testing.T) {
	checkInsertConstraintViolation(t, newTestConn(t))
}

func checkInsertConstraintViolation(t *testing.T, conn *database.Conn) {
	ctx := context.Background()

	_, err := conn.Exec(ctx, `CREATE UNIQUE INDEX idx_alt_nickname ON user_alt_name(nickname)`)
	require.NoError(t, err)

	require.NoError(t, Commit(ctx, conn, NewUserAltName(uuid.New(), "taken", 1)))

	err = Commit(ctx, conn, NewUserAltName(uuid.New(), "taken", 2))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommit)
	assert.ErrorIs(t, err, ErrConstraint)
	assert.False(t, Committed(ctx, conn, NewUserAltName(uuid.New(), "taken", 3)))
}

// scriptedExecutor records statements and answers Exec from a script.
type scriptedExecutor struct {
	stmts []string
	exec  []func() (int64, error)
}

func (s *scriptedExecutor) Exec(_ context.Context, stmt string, _ ...any) (int64, error) {
	s.stmts = append(s.stmts, stmt)
	next := s.exec[0]
	s.exec = s.exec[1:]
	return next()
}

func (s *scriptedExecutor) Query(context.Context, string, ...any) ([]database.Row, error) {
	return nil, errors.New("not scripted")
}

func (s *scriptedExecutor) QueryOne(context.Context, string, ...any) (database.Row, error) {
	return nil, errors.New("not scripted")
}

func (s *scriptedExecutor) Quote(ident string) string { return `"` + ident + `"` }

func TestCommit_UpdateErrorDoesNotInsert(t *testing.T) {
	transportErr := errors.New("connection reset by peer")
	db := &scriptedExecutor{exec: []func() (int64, error){
		func() (int64, error) { return 0, transportErr },
	}}

	err := Commit(context.Background(), db, NewDevice(uuid.New(), "laptop"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommit)
	assert.ErrorIs(t, err, transportErr)
	require.Len(t, db.stmts, 1)
	assert.True(t, strings.HasPrefix(db.stmts[0], "UPDATE "))
}

func TestCommit_InsertOnlyWhenNoRowsUpdated(t *testing.T) {
	db := &scriptedExecutor{exec: []func() (int64, error){
		func() (int64, error) { return 0, nil },
		func() (int64, error) { return 1, nil },
	}}

	require.NoError(t, Commit(context.Background(), db, NewDevice(uuid.New(), "laptop")))
	require.Len(t, db.stmts, 2)
	assert.Equal(t, `UPDATE "devices" SET "user" = ?, "name" = ? WHERE "id" = ?`, db.stmts[0])
	assert.Equal(t, `INSERT INTO "devices" ("id", "user", "name") VALUES (?, ?, ?)`, db.stmts[1])
}

func TestCommit_InsertError(t *testing.T) {
	db := &scriptedExecutor{exec: []func() (int64, error){
		func() (int64, error) { return 0, nil },
		func() (int64, error) { return 0, errors.New("disk full") },
	}}

	err := Commit(context.Background(), db, NewDevice(uuid.New(), "laptop"))
	assert.ErrorIs(t, err, ErrCommit)
	assert.NotErrorIs(t, err, ErrConstraint)
}

func TestCommit_MultipleRowsUpdated(t *testing.T) {
	db := &scriptedExecutor{exec: []func() (int64, error){
		func() (int64, error) { return 2, nil },
	}}

	err := Commit(context.Background(), db, NewDevice(uuid.New(), "laptop"))
	assert.ErrorIs(t, err, ErrCommit)
	assert.Len(t, db.stmts, 1)
}

func TestSelectQuery(t *testing.T) {
	db := &scriptedExecutor{}
	assert.Equal(t, `SELECT "id", "user", "message", "date" FROM "messages"`, selectQuery(db, &Message{}))
	assert.Equal(t, `SELECT "id", "username", "password" FROM "users"`, selectQuery(db, &User{}))
}
