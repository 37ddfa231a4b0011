// Package storetest opens migrated in-memory SQLite databases for tests that
// need to execute SQL rather than mock it.
package storetest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/teamkeeper/internal/server/migrations"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// Open returns a fresh database with every migration applied. Each call gets
// its own named in-memory database, closed when the test ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	// one connection keeps the database alive and surfaces code that
	// bypasses an open transaction as a deadlock
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))

	return db
}

// SeedRole inserts a role row and returns its id.
func SeedRole(t testing.TB, db *sql.DB, name string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO roles (id, name, description) VALUES (?, ?, ?)`, id, name, name)
	require.NoError(t, err)
	return id
}

// SeedUser inserts a user row and returns its id.
func SeedUser(t testing.TB, db *sql.DB, roleID, username string, active, deleted bool) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO users (id, role_id, username, active, deleted) VALUES (?, ?, ?, ?, ?)`,
		id, roleID, username, active, deleted)
	require.NoError(t, err)
	return id
}
