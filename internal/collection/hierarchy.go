package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrejsk/kartoteka/internal/common"
	"github.com/andrejsk/kartoteka/internal/dbx"
	"github.com/andrejsk/kartoteka/internal/deckname"
	"github.com/andrejsk/kartoteka/internal/models"
)

// maxAncestorDepth bounds the upward walk through the encoded path.
// Chains deeper than this are rejected rather than walked, guarding
// against malformed data producing unbounded recursion.
const maxAncestorDepth = 10

// firstExistingParent finds the nearest existing ancestor of machineName by
// walking the encoded path upward. Returns nil when no ancestor exists.
// Read-only.
func (c *Collection) firstExistingParent(ctx context.Context, tx dbx.DBTX, machineName string, recursionLevel int) (*models.Deck, error) {
	if recursionLevel > maxAncestorDepth {
		return nil, fmt.Errorf("%w: deck nesting level too deep", common.ErrorInvalidInput)
	}
	parentName, ok := deckname.ImmediateParent(machineName)
	if !ok {
		return nil, nil
	}
	repo := c.repos.Decks(tx)
	id, err := repo.GetID(ctx, parentName)
	if errors.Is(err, common.ErrorNotFound) {
		return c.firstExistingParent(ctx, tx, parentName, recursionLevel+1)
	}
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, id)
}

// matchOrCreateParents reconciles the deck's proposed name against existing
// ancestors. If a parent deck exists, the name is rewritten to match its
// case; missing intermediate levels are created. If no parents exist they
// are created from scratch. Fails when the first existing parent is a
// filtered deck.
func (c *Collection) matchOrCreateParents(ctx context.Context, o *op, deck *models.Deck) error {
	childComponents := deckname.Split(deck.Name)
	parent, err := c.firstExistingParent(ctx, o.tx, deck.Name, 0)
	if err != nil {
		return err
	}
	switch {
	case parent != nil:
		if parent.IsFiltered() {
			return common.ErrorFilteredDeckMustBeLeaf
		}
		parentCount := deckname.NumComponents(parent.Name)
		needCreate := parentCount != len(childComponents)-1
		// case correction flows ancestor -> child: the ancestor's exact
		// name becomes the prefix, the remaining components keep theirs
		deck.Name = parent.Name + deckname.Separator +
			deckname.Join(childComponents[parentCount:])
		if needCreate {
			return c.createMissingParents(ctx, o, deck.Name)
		}
		return nil
	case len(childComponents) == 1:
		// no parents required
		return nil
	default:
		// no existing parents
		return c.createMissingParents(ctx, o, deck.Name)
	}
}

// createMissingParents walks from the immediate parent upward, creating a
// normal deck for every level not yet present. Idempotent: when the chain
// already exists this is a no-op.
func (c *Collection) createMissingParents(ctx context.Context, o *op, machineName string) error {
	for {
		parentName, ok := deckname.ImmediateParent(machineName)
		if !ok {
			return nil
		}
		_, err := c.repos.Decks(o.tx).GetID(ctx, parentName)
		if errors.Is(err, common.ErrorNotFound) {
			if err := c.addParentDeck(ctx, o, parentName); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		machineName = parentName
	}
}

// addParentDeck adds a single normal deck with the provided machine name.
// Caller must have validated the name. Ancestors are ordinary decks and go
// through the same undo-logged add as user-visible ones.
func (c *Collection) addParentDeck(ctx context.Context, o *op, machineName string) error {
	deck := models.NewNormalDeck(machineName)
	deck.SetModified(o.usn)
	return c.addDeckUndoable(ctx, o, deck)
}

// renameChildDecks rewrites every descendant of original, substituting
// newName for the old prefix. Each child is persisted and undo-logged
// individually.
func (c *Collection) renameChildDecks(ctx context.Context, o *op, original *models.Deck, newName string) error {
	children, err := c.repos.Decks(o.tx).ListByPrefix(ctx, original.Name+deckname.Separator)
	if err != nil {
		return err
	}
	for _, child := range children {
		before := child.Clone()
		child.Name = newName + child.Name[len(original.Name):]
		child.SetModified(o.usn)
		if err := c.updateSingleDeckUndoable(ctx, o, child, before); err != nil {
			return err
		}
	}
	return nil
}
