// ABOUTME: Table creation for the gartrix entities
// ABOUTME: Column order matches each entity's Scan layout: id first, then Columns()

package store

import (
	"context"
	"fmt"
)

// tables holds one CREATE TABLE statement per entity table, run one Exec each.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS "users" (
		"id"       TEXT PRIMARY KEY,
		"username" TEXT NOT NULL,
		"password" TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS "devices" (
		"id"   TEXT PRIMARY KEY,
		"user" TEXT NOT NULL,
		"name" TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS "messages" (
		"id"      TEXT PRIMARY KEY,
		"user"    TEXT NOT NULL,
		"message" TEXT NOT NULL,
		"date"    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS "user_alt_name" (
		"id"       TEXT PRIMARY KEY,
		"user"     TEXT NOT NULL,
		"nickname" TEXT NOT NULL,
		"added"    BIGINT NOT NULL
	)`,
}

// CreateTables creates the entity tables if they don't exist.
// Existing tables are left as they are.
func CreateTables(ctx context.Context, db Executor) error {
	for _, stmt := range tables {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	logger().Info("schema ready", "tables", len(tables))
	return nil
}
