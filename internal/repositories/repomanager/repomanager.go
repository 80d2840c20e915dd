package repomanager

import (
	"context"
	"database/sql"

	"github.com/andrejsk/kartoteka/internal/dbx"
	"github.com/andrejsk/kartoteka/internal/repositories/decks"
	"github.com/andrejsk/kartoteka/internal/repositories/metadata"
	"github.com/andrejsk/kartoteka/internal/repositories/undolog"
)

// RepositoryManager vends repositories bound to a DBTX, so the same
// constructor serves both plain connections and open transactions, and
// exposes the schema migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Decks(db dbx.DBTX) decks.Repository
	Metadata(db dbx.DBTX) metadata.Repository
	UndoLog(db dbx.DBTX) undolog.Repository
}
