package decks

import (
	"context"

	"github.com/andrejsk/kartoteka/internal/models"
)

// Repository describes storage operations for deck rows.
// Implementations are backed by the collection's SQLite database.
type Repository interface {
	// Get returns a deck by id, or common.ErrorNotFound.
	Get(ctx context.Context, id models.DeckID) (*models.Deck, error)

	// GetID resolves a machine name to a deck id, or common.ErrorNotFound.
	// Matching is case-insensitive (the name column's collation), which is
	// what lets the hierarchy maintainer reconcile case drift against the
	// stored ancestor.
	GetID(ctx context.Context, name string) (models.DeckID, error)

	// Add inserts a new deck row. When deck.ID is the sentinel, an id is
	// assigned (epoch-milliseconds, probed upward until free) and written
	// back into deck.
	Add(ctx context.Context, deck *models.Deck) error

	// Update rewrites an existing row by id; common.ErrorNotFound when the
	// row does not exist.
	Update(ctx context.Context, deck *models.Deck) error

	// Upsert inserts or rewrites a row keeping the caller-supplied id.
	// Used by the referential-integrity recovery path.
	Upsert(ctx context.Context, deck *models.Deck) error

	// ListByPrefix returns decks whose machine name starts with prefix,
	// ordered by name. Pass parent + deckname.Separator to list a deck's
	// descendants.
	ListByPrefix(ctx context.Context, prefix string) ([]*models.Deck, error)

	// All returns every deck ordered by name.
	All(ctx context.Context) ([]*models.Deck, error)

	// Remove deletes a row by id. Only the undo path removes decks.
	Remove(ctx context.Context, id models.DeckID) error
}
