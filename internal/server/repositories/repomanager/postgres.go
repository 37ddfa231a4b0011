// Package repomanager vends the SQL repositories for one database dialect,
// bound to either a connection pool or a transaction, and runs the embedded
// goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/teamkeeper/internal/dbx"
	"github.com/dmitrijs2005/teamkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/teamkeeper/internal/server/query"
	"github.com/dmitrijs2005/teamkeeper/internal/server/repositories/authtokens"
	"github.com/dmitrijs2005/teamkeeper/internal/server/repositories/gpgkeys"
	"github.com/dmitrijs2005/teamkeeper/internal/server/repositories/roles"
	"github.com/dmitrijs2005/teamkeeper/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLRepositoryManager hands out repositories speaking its dialect.
type SQLRepositoryManager struct {
	dialect query.Dialect
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	if m.dialect == query.SQLite {
		return users.NewSQLiteRepository(db)
	}
	return users.NewPostgresRepository(db)
}

// Roles returns a roles.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Roles(db dbx.DBTX) roles.Repository {
	if m.dialect == query.SQLite {
		return roles.NewSQLiteRepository(db)
	}
	return roles.NewPostgresRepository(db)
}

// Gpgkeys returns a gpgkeys.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Gpgkeys(db dbx.DBTX) gpgkeys.Repository {
	if m.dialect == query.SQLite {
		return gpgkeys.NewSQLiteRepository(db)
	}
	return gpgkeys.NewPostgresRepository(db)
}

// AuthTokens returns an authtokens.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) AuthTokens(db dbx.DBTX) authtokens.Repository {
	if m.dialect == query.SQLite {
		return authtokens.NewSQLiteRepository(db)
	}
	return authtokens.NewPostgresRepository(db)
}

// Dialect is the SQL flavour of the vended repositories.
func (m *SQLRepositoryManager) Dialect() query.Dialect { return m.dialect }

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func (m *SQLRepositoryManager) gooseDialect() string {
	if m.dialect == query.SQLite {
		return "sqlite3"
	}
	return "pgx"
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.gooseDialect()); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB) (RepositoryManager, error) {
	return &SQLRepositoryManager{dialect: query.Postgres}, nil
}

// NewSQLiteRepositoryManager constructs an SQLite-backed RepositoryManager.
func NewSQLiteRepositoryManager(db *sql.DB) (RepositoryManager, error) {
	return &SQLRepositoryManager{dialect: query.SQLite}, nil
}

// Open opens the database for driver ("pgx" or "sqlite") and returns the
// matching manager.
func Open(driver, dsn string) (*sql.DB, RepositoryManager, error) {
	var newManager func(*sql.DB) (RepositoryManager, error)
	switch driver {
	case "pgx", "postgres":
		driver, newManager = "pgx", NewPostgresRepositoryManager
	case "sqlite":
		newManager = NewSQLiteRepositoryManager
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, err
	}

	m, err := newManager(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, m, nil
}
