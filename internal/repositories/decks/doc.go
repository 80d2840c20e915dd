// Package decks provides the persistence layer for deck rows.
//
// # Overview
//
// The package defines a Repository interface for deck row operations and a
// SQLite-backed implementation (SQLiteRepository) over a dbx.DBTX (either
// *sql.DB or *sql.Tx), so the same repository code runs standalone or
// inside a collection transaction.
//
// # Data Model
//
// A deck row holds the machine name (components joined by the reserved
// separator, see internal/deckname), the deck kind tag, the modification
// time and the sync version (usn). The UNIQUE index on name backs the
// collection's name-uniqueness invariant; hierarchy invariants are enforced
// one level up, in internal/collection.
//
// # Id Assignment
//
// New rows get epoch-millisecond ids probed upward until unused, keeping
// ids compatible with existing collection files. The sentinel id 0 marks
// an unpersisted deck.
//
// Typical Usage
//
//	repo := decks.NewSQLiteRepository(tx)
//	_ = repo.Add(ctx, deck)
//	id, _ := repo.GetID(ctx, deck.Name)
//	children, _ := repo.ListByPrefix(ctx, deck.Name+deckname.Separator)
package decks
