package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker serializes work on a key, possibly across processes.
// The resolver uses it so one remote reference is downloaded once.
type Locker interface {
	// Lock blocks until the key is held or ctx is done. The lock expires
	// after ttl even if never released.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
