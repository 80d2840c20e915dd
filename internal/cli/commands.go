package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andrejsk/kartoteka/internal/common"
	"github.com/andrejsk/kartoteka/internal/deckname"
	"github.com/andrejsk/kartoteka/internal/models"
)

// runAdd creates a deck (and any missing ancestors) from a "::"-separated
// name. A trailing -filtered argument marks the deck as filtered.
func (a *App) runAdd(ctx context.Context, args []string) error {
	var name string
	filtered := false
	for _, arg := range args {
		switch arg {
		case "-filtered", "--filtered":
			filtered = true
		default:
			if name != "" {
				return fmt.Errorf("%w: add takes a single deck name", common.ErrorInvalidInput)
			}
			name = arg
		}
	}
	if name == "" {
		return fmt.Errorf("%w: usage: add <name> [-filtered]", common.ErrorInvalidInput)
	}

	machine := deckname.FromNative(name)
	deck := models.NewNormalDeck(machine)
	if filtered {
		deck = models.NewFilteredDeck(machine)
	}

	out, err := a.coll.AddDeck(ctx, deck)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "added %s (id %d, %d deck(s) created)\n",
		deckname.ToNative(deck.Name), deck.ID, len(out.Added))
	return nil
}

// runRename moves or renames an existing deck, cascading to descendants.
func (a *App) runRename(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: rename <id> <new-name>", common.ErrorInvalidInput)
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid deck id %q", common.ErrorInvalidInput, args[0])
	}

	deck, err := a.coll.GetDeck(ctx, models.DeckID(id))
	if err != nil {
		return err
	}

	renamed := deck.Clone()
	renamed.Name = deckname.FromNative(args[1])

	out, err := a.coll.UpdateDeck(ctx, renamed)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "renamed to %s (%d deck(s) renamed, %d created)\n",
		deckname.ToNative(renamed.Name), len(out.Renamed), len(out.Added))
	return nil
}

// runList prints all decks ordered by name, one per line.
func (a *App) runList(ctx context.Context) error {
	decks, err := a.coll.ListDecks(ctx)
	if err != nil {
		return err
	}

	for _, d := range decks {
		marker := ""
		if d.IsFiltered() {
			marker = " [filtered]"
		}
		fmt.Fprintf(a.out, "%d\t%s%s\n", d.ID, deckname.ToNative(d.Name), marker)
	}
	return nil
}

// runUndo reverts the most recent operation.
func (a *App) runUndo(ctx context.Context) error {
	out, err := a.coll.Undo(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "undone: %s\n", out.Undone)
	return nil
}

// runRecover re-creates a placeholder row for a deck id that is referenced
// elsewhere but missing from the collection.
func (a *App) runRecover(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: recover <id>", common.ErrorInvalidInput)
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid deck id %q", common.ErrorInvalidInput, args[0])
	}

	if _, err := a.coll.RecoverMissingDeck(ctx, models.DeckID(id)); err != nil {
		return err
	}

	deck, err := a.coll.GetDeck(ctx, models.DeckID(id))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "recovered %d as %s\n", deck.ID, deck.Name)
	return nil
}
