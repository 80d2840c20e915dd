// Package repomanager provides a concrete RepositoryManager for the SQLite
// collection file, wiring together repository constructors and database
// migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/andrejsk/kartoteka/internal/dbx"
	"github.com/andrejsk/kartoteka/internal/migrations"
	"github.com/andrejsk/kartoteka/internal/repositories/decks"
	"github.com/andrejsk/kartoteka/internal/repositories/metadata"
	"github.com/andrejsk/kartoteka/internal/repositories/undolog"
)

// SQLiteRepositoryManager vends SQLite-backed repository implementations
// and exposes a schema migration hook.
type SQLiteRepositoryManager struct{}

// NewSQLiteRepositoryManager constructs a SQLite-backed RepositoryManager.
func NewSQLiteRepositoryManager() RepositoryManager {
	return &SQLiteRepositoryManager{}
}

// Decks returns a decks.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Decks(db dbx.DBTX) decks.Repository {
	return decks.NewSQLiteRepository(db)
}

// Metadata returns a metadata.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// UndoLog returns an undolog.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) UndoLog(db dbx.DBTX) undolog.Repository {
	return undolog.NewSQLiteRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
