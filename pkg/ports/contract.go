package ports

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunAssetCacheContract runs a suite of tests to verify that an AssetCache implementation
// adheres to the defined interface contract. Cached paths point at real files,
// since implementations may drop entries whose file is gone.
func RunAssetCacheContract(t *testing.T, cache AssetCache) {
	ctx := context.Background()
	ref := "https://example.com/contract-" + time.Now().Format("20060102150405") + ".mp4"

	dir := t.TempDir()
	first := filepath.Join(dir, "contract.mp4")
	second := filepath.Join(dir, "contract-2.mp4")
	for _, p := range []string{first, second} {
		require.NoError(t, os.WriteFile(p, []byte("media"), 0o644))
	}

	t.Run("Miss", func(t *testing.T) {
		_, err := cache.Get(ctx, ref)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Put and Get", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, ref, first))

		path, err := cache.Get(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, first, path)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, ref, second))

		path, err := cache.Get(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, second, path)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Delete(ctx, ref))

		_, err := cache.Get(ctx, ref)
		assert.ErrorIs(t, err, ErrCacheMiss, "Get after Delete should return ErrCacheMiss")

		assert.NoError(t, cache.Delete(ctx, ref), "Delete of a missing entry should succeed")
	})
}

// RunLockerContract verifies mutual exclusion and release of a Locker.
func RunLockerContract(t *testing.T, locker Locker) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405.000000000")

	t.Run("Lock and Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, time.Minute)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	})

	t.Run("Held lock blocks until context is done", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, time.Minute)
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, key, time.Minute)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		require.NoError(t, unlock(ctx))

		unlock, err = locker.Lock(ctx, key, time.Minute)
		require.NoError(t, err, "lock should be free after unlock")
		require.NoError(t, unlock(ctx))
	})
}
