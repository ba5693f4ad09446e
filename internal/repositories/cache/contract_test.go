package cache

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/usercache/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract checks the Repository contract against any implementation.
func runContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("put then get", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Put(ctx, models.CacheEntry{Key: "k1", Value: "100", Timestamp: 1}))

		e, err := r.Get(ctx, "k1")
		require.NoError(t, err)
		require.Equal(t, &models.CacheEntry{Key: "k1", Value: "100", Timestamp: 1}, e)
	})

	t.Run("missing key is nil nil", func(t *testing.T) {
		r := newRepo(t)

		e, err := r.Get(context.Background(), "absent")
		require.NoError(t, err)
		require.Nil(t, e)
	})

	t.Run("put replaces value and timestamp", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Put(ctx, models.CacheEntry{Key: models.LastSyncKey, Value: "old", Timestamp: 1}))
		require.NoError(t, r.Put(ctx, models.CacheEntry{Key: models.LastSyncKey, Value: "new", Timestamp: 2}))

		e, err := r.Get(ctx, models.LastSyncKey)
		require.NoError(t, err)
		assert.Equal(t, "new", e.Value)
		assert.Equal(t, int64(2), e.Timestamp)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Put(ctx, models.CacheEntry{Key: "x", Value: "1"}))
		require.NoError(t, r.Delete(ctx, "x"))

		e, err := r.Get(ctx, "x")
		require.NoError(t, err)
		require.Nil(t, e)

		require.NoError(t, r.Delete(ctx, "x"))
	})

	t.Run("clear removes all keys", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Put(ctx, models.CacheEntry{Key: "a", Value: "1"}))
		require.NoError(t, r.Put(ctx, models.CacheEntry{Key: "b", Value: "2"}))
		require.NoError(t, r.Clear(ctx))

		for _, k := range []string{"a", "b"} {
			e, err := r.Get(ctx, k)
			require.NoError(t, err)
			assert.Nil(t, e)
		}

		require.NoError(t, r.Clear(ctx), "clearing an empty cache is fine")
	})
}
