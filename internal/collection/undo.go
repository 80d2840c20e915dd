package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andrejsk/kartoteka/internal/common"
	"github.com/andrejsk/kartoteka/internal/dbx"
	"github.com/andrejsk/kartoteka/internal/models"
	"github.com/andrejsk/kartoteka/internal/repositories/undolog"
)

// Undo reverses the most recent logged operation: decks it added are
// removed, decks it rewrote are restored from their snapshots. The
// operation's steps are applied newest-first and cleared from the log on
// success. Returns common.ErrorNothingToUndo on an empty log.
func (c *Collection) Undo(ctx context.Context) (*OpOutput, error) {
	out := &OpOutput{Op: OpUndo}
	err := dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		undoRepo := c.repos.UndoLog(tx)

		opID, opTag, err := undoRepo.LastOp(ctx)
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNothingToUndo
		}
		if err != nil {
			return err
		}
		out.Undone = opTag

		steps, err := undoRepo.StepsForOp(ctx, opID)
		if err != nil {
			return err
		}

		deckRepo := c.repos.Decks(tx)
		for _, step := range steps {
			switch step.Kind {
			case undolog.StepAddDeck:
				if err := deckRepo.Remove(ctx, step.DeckID); err != nil {
					return err
				}
			case undolog.StepUpdateDeck:
				var before models.Deck
				if err := json.Unmarshal(step.Snapshot, &before); err != nil {
					return fmt.Errorf("corrupt undo snapshot for deck %d: %w", step.DeckID, err)
				}
				if err := deckRepo.Update(ctx, &before); err != nil {
					return err
				}
				out.Renamed = append(out.Renamed, before.ID)
			case undolog.StepUpsertDeck:
				if len(step.Snapshot) == 0 {
					if err := deckRepo.Remove(ctx, step.DeckID); err != nil {
						return err
					}
					continue
				}
				var before models.Deck
				if err := json.Unmarshal(step.Snapshot, &before); err != nil {
					return fmt.Errorf("corrupt undo snapshot for deck %d: %w", step.DeckID, err)
				}
				if err := deckRepo.Upsert(ctx, &before); err != nil {
					return err
				}
				out.Renamed = append(out.Renamed, before.ID)
			default:
				return fmt.Errorf("unknown undo step kind %q", step.Kind)
			}
		}

		return undoRepo.DeleteOp(ctx, opID)
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info(ctx, "operation undone", "op", out.Undone)
	return out, nil
}
