package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:", 0, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	assert.True(t, store.Ready(ctx))

	_, ok, err := store.Get(ctx, "route|bozen|meran")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "route|bozen|meran", []byte(`[{"segments":[]}]`), time.Minute))
	value, ok, err := store.Get(ctx, "route|bozen|meran")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"segments":[]}]`, string(value))

	require.NoError(t, store.Set(ctx, "route|bozen|meran", []byte(`[]`), time.Minute))
	value, _, err = store.Get(ctx, "route|bozen|meran")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)
}

func TestSQLiteStoreExpiryAndPurge(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	now := time.Date(2024, 5, 3, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "departures|66000123", []byte(`[]`), time.Minute))
	require.NoError(t, store.Set(ctx, "stations|bozen", []byte(`[]`), time.Hour))

	now = now.Add(2 * time.Minute)

	_, ok, err := store.Get(ctx, "departures|66000123")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries are not served")

	removed, err := store.purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, ok, err = store.Get(ctx, "stations|bozen")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteStoreFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := NewSQLiteStore(path, time.Hour, nil)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "stations|meran", []byte(`["x"]`), time.Hour))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path, time.Hour, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	value, ok, err := reopened.Get(ctx, "stations|meran")
	require.NoError(t, err)
	assert.True(t, ok, "entries survive a restart")
	assert.Equal(t, []byte(`["x"]`), value)
}

func TestSQLiteStoreClose(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(":memory:", 10*time.Millisecond, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		_ = store.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close took too long")
	}

	assert.NoError(t, store.Close())
	assert.False(t, store.Ready(ctx))
	_, _, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrStoreClosed)
}
