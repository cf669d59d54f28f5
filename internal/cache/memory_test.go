package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	assert.True(t, store.Ready(ctx))

	t.Run("miss", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "stations|bozen")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "stations|bozen", []byte(`[1]`), time.Minute))

		value, ok, err := store.Get(ctx, "stations|bozen")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte(`[1]`), value)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "stations|bozen", []byte(`[2]`), time.Minute))

		value, _, err := store.Get(ctx, "stations|bozen")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[2]`), value)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		value, _, err := store.Get(ctx, "stations|bozen")
		require.NoError(t, err)
		value[0] = 'x'

		again, _, err := store.Get(ctx, "stations|bozen")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[2]`), again)
	})

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "departures|1", []byte(`[]`), 10*time.Millisecond))
		time.Sleep(30 * time.Millisecond)

		_, ok, err := store.Get(ctx, "departures|1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		assert.Error(t, store.Set(ctx, "route|a|b", []byte(`[]`), 0))
	})
}

func TestMemoryStoreClosed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	assert.False(t, store.Ready(ctx))
	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, store.Set(ctx, "k", []byte("v"), time.Minute), ErrStoreClosed)
}
