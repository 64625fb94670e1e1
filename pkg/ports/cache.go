package ports

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by AssetCache.Get when no entry exists.
var ErrCacheMiss = errors.New("asset not cached")

// AssetCache remembers the local copy of a retrieved reference.
// Implementations must be safe for concurrent use.
type AssetCache interface {
	// Get returns the cached local path for ref, or ErrCacheMiss.
	Get(ctx context.Context, ref string) (string, error)

	// Put records the local path for ref.
	Put(ctx context.Context, ref, path string) error

	// Delete forgets ref. Deleting a missing entry is not an error.
	Delete(ctx context.Context, ref string) error
}
