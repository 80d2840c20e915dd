// Package undolog persists the reversible steps of each collection
// operation. Steps are grouped by an operation id minted per transaction,
// so one user-visible action (which may create several ancestor decks and
// rename many children) undoes as a unit.
package undolog

import (
	"context"

	"github.com/andrejsk/kartoteka/internal/models"
)

// StepKind tells the undo machinery how to reverse a step.
type StepKind string

const (
	// StepAddDeck reverses by deleting the deck row.
	StepAddDeck StepKind = "add_deck"
	// StepUpdateDeck reverses by restoring the snapshot row.
	StepUpdateDeck StepKind = "update_deck"
	// StepUpsertDeck reverses by restoring the snapshot, or deleting the
	// row when no snapshot was taken (the upsert inserted it).
	StepUpsertDeck StepKind = "upsert_deck"
)

// Step is one reversible mutation inside an operation. Snapshot holds the
// prior deck row as JSON for update/upsert steps, nil for adds.
type Step struct {
	OpID        string
	OpTag       string
	Seq         int
	Kind        StepKind
	DeckID      models.DeckID
	Snapshot    []byte
	CreatedSecs int64
}

// Repository describes storage for undo steps.
type Repository interface {
	// Append records a step. Seq orders steps within one operation.
	Append(ctx context.Context, step *Step) error

	// LastOp returns the id and tag of the most recent operation, or
	// common.ErrorNotFound when the log is empty.
	LastOp(ctx context.Context) (opID string, opTag string, err error)

	// StepsForOp returns an operation's steps in reverse order (highest
	// Seq first), ready to be applied for undo.
	StepsForOp(ctx context.Context, opID string) ([]*Step, error)

	// DeleteOp removes all steps of an operation.
	DeleteOp(ctx context.Context, opID string) error
}
