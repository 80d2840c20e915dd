// Package common defines shared sentinel errors used across kartoteka
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors (bad caller input, excessive nesting).
	ErrorInvalidInput = errors.New("invalid input")

	// Hierarchy constraint: a filtered deck can never be an ancestor.
	ErrorFilteredDeckMustBeLeaf = errors.New("filtered deck must be a leaf")

	// Undo-specific errors.
	ErrorNothingToUndo = errors.New("nothing to undo")
)
