// Package models defines the data model persisted in a kartoteka collection.
package models

import "time"

// DeckID identifies a deck row. Ids are epoch-milliseconds assigned at
// insert time; SentinelDeckID marks a deck that has not been persisted yet.
type DeckID int64

// SentinelDeckID is the "not yet assigned" id. AddDeck rejects anything else.
const SentinelDeckID DeckID = 0

// DeckKind is a closed tag distinguishing ordinary decks from filtered ones.
type DeckKind int

const (
	// KindNormal is a regular deck holding its own cards.
	KindNormal DeckKind = iota
	// KindFiltered aggregates cards dynamically and must stay a leaf:
	// no other deck may nest under it.
	KindFiltered
)

// Deck is one row of the deck tree. Name is the machine form: components
// joined by deckname.Separator, encoding the tree position without a
// parent-id column.
type Deck struct {
	ID        DeckID
	Name      string
	Kind      DeckKind
	MtimeSecs int64
	USN       int64
}

// NewNormalDeck returns an unpersisted normal deck.
func NewNormalDeck(name string) *Deck {
	return &Deck{Name: name, Kind: KindNormal}
}

// NewFilteredDeck returns an unpersisted filtered deck.
func NewFilteredDeck(name string) *Deck {
	return &Deck{Name: name, Kind: KindFiltered}
}

// IsFiltered reports whether the deck is a filtered (leaf-only) deck.
func (d *Deck) IsFiltered() bool {
	return d.Kind == KindFiltered
}

// SetModified stamps the modification time and the sync version so the
// sync layer can detect the change.
func (d *Deck) SetModified(usn int64) {
	d.MtimeSecs = time.Now().Unix()
	d.USN = usn
}

// Clone returns a copy, used for undo snapshots before mutating a deck.
func (d *Deck) Clone() *Deck {
	c := *d
	return &c
}
