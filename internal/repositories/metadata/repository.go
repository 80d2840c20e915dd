// Package metadata provides the collection's key/value store, including
// the sync version (usn) counter stamped on every mutation.
package metadata

import "context"

// KeyUSN holds the current sync version as decimal text.
const KeyUSN = "usn"

// Repository describes access to collection-level metadata.
type Repository interface {
	// Get returns the value for key, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set inserts or replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key; deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// CurrentUSN returns the sync version counter, 0 when unset.
	CurrentUSN(ctx context.Context) (int64, error)

	// SetUSN stores the sync version counter. Bumping it belongs to the
	// sync layer; the hierarchy maintainer only reads it.
	SetUSN(ctx context.Context, usn int64) error
}
