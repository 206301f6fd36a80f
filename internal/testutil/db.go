// Package testutil provides shared helpers for package tests: an isolated
// in-memory database with migrations applied, and an in-memory stand-in for
// the object store with failure injection.
package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/lifelog/lifelog/internal/db"
)

// NewDB returns a fresh in-memory SQLite database with all migrations
// applied. A single connection is used so the in-memory database is shared
// across queries.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := sqlx.Connect("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	err = db.RunMigrations(conn.DB, "sqlite")
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
