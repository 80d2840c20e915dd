package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrejsk/kartoteka/internal/common"
	"github.com/andrejsk/kartoteka/internal/deckname"
	"github.com/andrejsk/kartoteka/internal/models"
)

// AddDeck adds a new deck. The id must be the sentinel; it is assigned
// automatically. Missing ancestors are created in the same transaction and
// reported in the OpOutput.
func (c *Collection) AddDeck(ctx context.Context, deck *models.Deck) (*OpOutput, error) {
	if deck.ID != models.SentinelDeckID {
		return nil, fmt.Errorf("%w: deck to add must have id 0", common.ErrorInvalidInput)
	}
	return c.transact(ctx, OpAddDeck, func(ctx context.Context, o *op) error {
		return c.addDeckInner(ctx, o, deck)
	})
}

func (c *Collection) addDeckInner(ctx context.Context, o *op, deck *models.Deck) error {
	if err := c.prepareDeckForUpdate(ctx, o, deck); err != nil {
		return err
	}
	deck.SetModified(o.usn)
	if err := c.matchOrCreateParents(ctx, o, deck); err != nil {
		return err
	}
	return c.addDeckUndoable(ctx, o, deck)
}

// UpdateDeck updates an existing deck modified by the user. On rename it
// reconciles the new path against existing ancestors, cascades the rename
// to all descendants, and finally re-creates any grandparents the new name
// implies.
func (c *Collection) UpdateDeck(ctx context.Context, deck *models.Deck) (*OpOutput, error) {
	return c.transact(ctx, OpUpdateDeck, func(ctx context.Context, o *op) error {
		original, err := c.repos.Decks(o.tx).Get(ctx, deck.ID)
		if err != nil {
			return err
		}
		return c.updateDeckInner(ctx, o, deck, original)
	})
}

func (c *Collection) updateDeckInner(ctx context.Context, o *op, deck, original *models.Deck) error {
	if err := c.prepareDeckForUpdate(ctx, o, deck); err != nil {
		return err
	}
	deck.SetModified(o.usn)
	nameChanged := original.Name != deck.Name
	if nameChanged {
		// match closest parent name
		if err := c.matchOrCreateParents(ctx, o, deck); err != nil {
			return err
		}
		// rename children
		if err := c.renameChildDecks(ctx, o, original, deck.Name); err != nil {
			return err
		}
	}
	if err := c.updateSingleDeckUndoable(ctx, o, deck, original); err != nil {
		return err
	}
	if nameChanged {
		// after updating, we need to ensure all grandparents exist, which
		// may not be the case in the parent->child case
		return c.createMissingParents(ctx, o, deck.Name)
	}
	return nil
}

// AddOrUpdateDeck dispatches on the sentinel id. Prefer AddDeck or
// UpdateDeck to be explicit about your intentions.
func (c *Collection) AddOrUpdateDeck(ctx context.Context, deck *models.Deck) (*OpOutput, error) {
	if deck.ID == models.SentinelDeckID {
		return c.AddDeck(ctx, deck)
	}
	return c.UpdateDeck(ctx, deck)
}

// RecoverMissingDeck fabricates a placeholder normal deck named
// "recovered<id>" with the given id. It is the repair path for referential
// integrity violations detected elsewhere (cards pointing at a deck id
// that no longer exists).
func (c *Collection) RecoverMissingDeck(ctx context.Context, id models.DeckID) (*OpOutput, error) {
	return c.transact(ctx, OpRecoverDeck, func(ctx context.Context, o *op) error {
		deck := models.NewNormalDeck(fmt.Sprintf("recovered%d", id))
		deck.ID = id
		deck.SetModified(o.usn)
		return c.addOrUpdateSingleDeckWithExistingID(ctx, o, deck)
	})
}

// addOrUpdateSingleDeckWithExistingID persists a deck keeping its id.
// The name is normalized and made unique, but parents/children are not
// touched; callers own any hierarchy repair.
func (c *Collection) addOrUpdateSingleDeckWithExistingID(ctx context.Context, o *op, deck *models.Deck) error {
	if err := c.prepareDeckForUpdate(ctx, o, deck); err != nil {
		return err
	}
	return c.upsertDeckUndoable(ctx, o, deck)
}

// prepareDeckForUpdate normalizes the deck name and renames it if not
// unique. Bumps mtime and usn if the name was changed, but otherwise
// leaves them as they are.
func (c *Collection) prepareDeckForUpdate(ctx context.Context, o *op, deck *models.Deck) error {
	if normalized := deckname.Normalize(deck.Name); normalized != deck.Name {
		deck.Name = normalized
		deck.SetModified(o.usn)
	}
	return c.ensureDeckNameUnique(ctx, o, deck)
}

// ensureDeckNameUnique appends "+" to the machine name until no other deck
// holds it. The suffix scheme matches existing collection files.
func (c *Collection) ensureDeckNameUnique(ctx context.Context, o *op, deck *models.Deck) error {
	for {
		id, err := c.repos.Decks(o.tx).GetID(ctx, deck.Name)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if id == deck.ID {
			return nil
		}
		deck.Name += "+"
		deck.SetModified(o.usn)
	}
}

// GetDeck returns a deck by id.
func (c *Collection) GetDeck(ctx context.Context, id models.DeckID) (*models.Deck, error) {
	return c.repos.Decks(c.db).Get(ctx, id)
}

// DeckIDByName resolves a machine name to an id.
func (c *Collection) DeckIDByName(ctx context.Context, name string) (models.DeckID, error) {
	return c.repos.Decks(c.db).GetID(ctx, name)
}

// ListDecks returns every deck ordered by machine name.
func (c *Collection) ListDecks(ctx context.Context) ([]*models.Deck, error) {
	return c.repos.Decks(c.db).All(ctx)
}
