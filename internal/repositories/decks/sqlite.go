package decks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andrejsk/kartoteka/internal/common"
	"github.com/andrejsk/kartoteka/internal/dbx"
	"github.com/andrejsk/kartoteka/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns the deck with the given id.
func (r *SQLiteRepository) Get(ctx context.Context, id models.DeckID) (*models.Deck, error) {
	query := `SELECT id, name, kind, mtime_secs, usn FROM decks WHERE id = ?`
	var d models.Deck
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&d.ID, &d.Name, &d.Kind, &d.MtimeSecs, &d.USN)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select deck %d: %w", id, err)
	}
	return &d, nil
}

// GetID resolves a machine name to a deck id. The name column's collation
// makes the match case-insensitive.
func (r *SQLiteRepository) GetID(ctx context.Context, name string) (models.DeckID, error) {
	query := `SELECT id FROM decks WHERE name = ?`
	var id models.DeckID
	err := r.db.QueryRowContext(ctx, query, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, common.ErrorNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve deck name: %w", err)
	}
	return id, nil
}

// Add inserts a new deck row, assigning an id when deck.ID is the sentinel.
func (r *SQLiteRepository) Add(ctx context.Context, deck *models.Deck) error {
	if deck.ID == models.SentinelDeckID {
		id, err := r.nextID(ctx)
		if err != nil {
			return err
		}
		deck.ID = id
	}
	query := `INSERT INTO decks (id, name, kind, mtime_secs, usn) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		deck.ID, deck.Name, deck.Kind, deck.MtimeSecs, deck.USN); err != nil {
		return fmt.Errorf("failed to insert deck: %w", err)
	}
	return nil
}

// nextID picks an unused epoch-millisecond id, probing upward on collision
// so two decks created in the same millisecond still get distinct ids.
func (r *SQLiteRepository) nextID(ctx context.Context) (models.DeckID, error) {
	id := models.DeckID(time.Now().UnixMilli())
	for {
		var one int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM decks WHERE id = ?`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return id, nil
		}
		if err != nil {
			return 0, fmt.Errorf("failed to probe deck id: %w", err)
		}
		id++
	}
}

// Update rewrites an existing row by id.
func (r *SQLiteRepository) Update(ctx context.Context, deck *models.Deck) error {
	query := `UPDATE decks SET name = ?, kind = ?, mtime_secs = ?, usn = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		deck.Name, deck.Kind, deck.MtimeSecs, deck.USN, deck.ID)
	if err != nil {
		return fmt.Errorf("failed to update deck %d: %w", deck.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Upsert inserts or rewrites a row keeping the caller-supplied id.
func (r *SQLiteRepository) Upsert(ctx context.Context, deck *models.Deck) error {
	query := `
		INSERT INTO decks (id, name, kind, mtime_secs, usn)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			mtime_secs = excluded.mtime_secs,
			usn = excluded.usn
	`
	if _, err := r.db.ExecContext(ctx, query,
		deck.ID, deck.Name, deck.Kind, deck.MtimeSecs, deck.USN); err != nil {
		return fmt.Errorf("failed to upsert deck %d: %w", deck.ID, err)
	}
	return nil
}

// escapeLike escapes LIKE metacharacters so a machine name can be used as
// a literal prefix pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListByPrefix returns decks whose machine name starts with prefix, ordered
// by name.
func (r *SQLiteRepository) ListByPrefix(ctx context.Context, prefix string) ([]*models.Deck, error) {
	query := `SELECT id, name, kind, mtime_secs, usn FROM decks
		WHERE name LIKE ? ESCAPE '\' ORDER BY name`
	return r.selectDecks(ctx, query, escapeLike(prefix)+"%")
}

// All returns every deck ordered by name.
func (r *SQLiteRepository) All(ctx context.Context) ([]*models.Deck, error) {
	query := `SELECT id, name, kind, mtime_secs, usn FROM decks ORDER BY name`
	return r.selectDecks(ctx, query)
}

func (r *SQLiteRepository) selectDecks(ctx context.Context, query string, args ...any) ([]*models.Deck, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select decks: %w", err)
	}
	defer rows.Close()

	var result []*models.Deck
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(&d.ID, &d.Name, &d.Kind, &d.MtimeSecs, &d.USN); err != nil {
			return nil, err
		}
		result = append(result, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Remove deletes a row by id.
func (r *SQLiteRepository) Remove(ctx context.Context, id models.DeckID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete deck %d: %w", id, err)
	}
	return nil
}
