// Package store maps gartrix entities onto rows of a relational store.
//
// # Architecture
//
// Every persistable type implements Entity: a table name, an identifier, and
// the ordered list of non-id columns with their values. Decoding goes the other
// way through Record, which adds Scan(database.Row). The generic helpers work
// over any Record without per-type branching:
//
//   - Decode: one row into an entity, all or nothing
//   - Load: single-row lookup by id
//   - GetAll: every decodable row of a table
//   - Count: independent row count for a table
//   - Commit: update-or-insert of one entity
//
// # Data Models
//
//   - User: account with a bcrypt password hash
//   - Device: device registered to a user
//   - Message: markdown message posted by a user
//   - UserAltName: alternate display name for a user
//
// Tables hold one row per entity, columns in positional order id, <fields...>.
// Identifiers are UUIDs assigned at construction and stored as text.
//
// # Commit
//
// Entities do not track whether they already exist as a row. Commit issues an
// UPDATE first and only falls back to INSERT when the update matched no rows.
// Any error from the update is returned as is; it never triggers an insert.
//
// # Error Handling
//
//   - Load returns (nil, false) both when no row matches and when the row
//     cannot be decoded. The two are deliberately not distinguished.
//   - GetAll skips undecodable rows and fails only when the query fails.
//   - Commit failures wrap ErrCommit, and ErrConstraint when the store
//     rejected the insert.
//
// # Testing
//
// Tests run against an in-memory SQLite session:
//
//	conn, err := database.Open(ctx, "sqlite::memory:")
//	err = store.CreateTables(ctx, conn)
package store
