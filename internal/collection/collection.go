// Package collection implements the deck hierarchy maintainer on top of the
// repository layer.
//
// Deck names encode their tree position: components joined by the reserved
// separator (see internal/deckname), with no parent-id column. Every public
// mutation runs in one transaction and keeps the encoded tree consistent:
// after a successful call the full ancestor chain of every deck exists, no
// filtered deck has children, and names stay unique. Each mutation is
// undo-logged and stamped with the current sync version.
package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/andrejsk/kartoteka/internal/common"
	"github.com/andrejsk/kartoteka/internal/dbx"
	"github.com/andrejsk/kartoteka/internal/logging"
	"github.com/andrejsk/kartoteka/internal/models"
	"github.com/andrejsk/kartoteka/internal/repositories/repomanager"
	"github.com/andrejsk/kartoteka/internal/repositories/undolog"
)

// Operation tags recorded with every transaction for the undo log.
const (
	OpAddDeck     = "AddDeck"
	OpUpdateDeck  = "UpdateDeck"
	OpRecoverDeck = "RecoverDeck"
	OpUndo        = "Undo"
)

// OpOutput reports what a committed operation did. Implicitly created
// ancestors and cascade-renamed children are listed alongside the target
// deck, so undo and sync layers can account for every change.
type OpOutput struct {
	// Op is the operation tag.
	Op string
	// Undone names the operation reversed by an Undo, empty otherwise.
	Undone string
	// Added lists every deck id the operation inserted.
	Added []models.DeckID
	// Renamed lists every deck id whose name the operation rewrote.
	Renamed []models.DeckID
}

// Collection is a handle on one collection database. A single logical
// writer is assumed; the transaction boundary is the only lock.
type Collection struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

// Open opens (or creates) the collection database at dsn and migrates its
// schema. busyTimeout, when positive, is applied as the sqlite busy timeout.
func Open(ctx context.Context, dsn string, busyTimeout time.Duration, logger logging.Logger) (*Collection, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection db: %w", err)
	}
	if busyTimeout > 0 {
		if _, err := db.ExecContext(ctx,
			fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds())); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}

	repos := repomanager.NewSQLiteRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	logger.Info(ctx, "collection opened", "dsn", dsn)
	return &Collection{db: db, repos: repos, logger: logger}, nil
}

// NewWithDB wraps an already-open, already-migrated database. Mainly for
// tests that manage the connection themselves.
func NewWithDB(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger) *Collection {
	return &Collection{db: db, repos: repos, logger: logger}
}

// Close releases the underlying database handle.
func (c *Collection) Close() error {
	return c.db.Close()
}

// op carries per-transaction state: the transactional handle, the sync
// version read once at the start, the undo operation id, and the output
// being accumulated.
type op struct {
	tx  dbx.DBTX
	id  string
	tag string
	usn int64
	seq int
	out *OpOutput
}

// transact runs fn inside one transaction tagged for the undo log.
// On any error the transaction rolls back and no partial hierarchy change
// is visible.
func (c *Collection) transact(ctx context.Context, tag string, fn func(ctx context.Context, o *op) error) (*OpOutput, error) {
	out := &OpOutput{Op: tag}
	err := dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		usn, err := c.repos.Metadata(tx).CurrentUSN(ctx)
		if err != nil {
			return err
		}
		o := &op{tx: tx, id: uuid.NewString(), tag: tag, usn: usn, out: out}
		return fn(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug(ctx, "operation committed",
		"op", tag, "added", len(out.Added), "renamed", len(out.Renamed))
	return out, nil
}

// appendStep records one reversible step of the running operation.
func (c *Collection) appendStep(ctx context.Context, o *op, kind undolog.StepKind, deckID models.DeckID, snapshot []byte) error {
	step := &undolog.Step{
		OpID:        o.id,
		OpTag:       o.tag,
		Seq:         o.seq,
		Kind:        kind,
		DeckID:      deckID,
		Snapshot:    snapshot,
		CreatedSecs: time.Now().Unix(),
	}
	o.seq++
	return c.repos.UndoLog(o.tx).Append(ctx, step)
}

// addDeckUndoable inserts the deck and logs the reverse step. Implicitly
// created ancestors go through here too: they are ordinary decks.
func (c *Collection) addDeckUndoable(ctx context.Context, o *op, deck *models.Deck) error {
	if err := c.repos.Decks(o.tx).Add(ctx, deck); err != nil {
		return err
	}
	if err := c.appendStep(ctx, o, undolog.StepAddDeck, deck.ID, nil); err != nil {
		return err
	}
	o.out.Added = append(o.out.Added, deck.ID)
	return nil
}

// updateSingleDeckUndoable rewrites one row, keeping the original as the
// undo snapshot.
func (c *Collection) updateSingleDeckUndoable(ctx context.Context, o *op, deck, original *models.Deck) error {
	snapshot, err := json.Marshal(original)
	if err != nil {
		return fmt.Errorf("failed to snapshot deck %d: %w", original.ID, err)
	}
	if err := c.repos.Decks(o.tx).Update(ctx, deck); err != nil {
		return err
	}
	if err := c.appendStep(ctx, o, undolog.StepUpdateDeck, deck.ID, snapshot); err != nil {
		return err
	}
	if original.Name != deck.Name {
		o.out.Renamed = append(o.out.Renamed, deck.ID)
	}
	return nil
}

// upsertDeckUndoable inserts or rewrites a row with a caller-supplied id,
// snapshotting any pre-existing row for undo. Recovery path only.
func (c *Collection) upsertDeckUndoable(ctx context.Context, o *op, deck *models.Deck) error {
	var snapshot []byte
	existing, err := c.repos.Decks(o.tx).Get(ctx, deck.ID)
	switch {
	case err == nil:
		if snapshot, err = json.Marshal(existing); err != nil {
			return fmt.Errorf("failed to snapshot deck %d: %w", deck.ID, err)
		}
	case errors.Is(err, common.ErrorNotFound):
		// inserting fresh; undo will delete
	default:
		return err
	}

	if err := c.repos.Decks(o.tx).Upsert(ctx, deck); err != nil {
		return err
	}
	if err := c.appendStep(ctx, o, undolog.StepUpsertDeck, deck.ID, snapshot); err != nil {
		return err
	}
	if snapshot == nil {
		o.out.Added = append(o.out.Added, deck.ID)
	} else if existing.Name != deck.Name {
		o.out.Renamed = append(o.out.Renamed, deck.ID)
	}
	return nil
}
