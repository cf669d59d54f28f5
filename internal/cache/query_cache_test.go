package cache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridehub.org/transit/internal/logging"
)

type failingStore struct {
	ready  bool
	getErr error
	setErr error
	data   []byte
	sets   int
}

func (f *failingStore) Ready(context.Context) bool { return f.ready }

func (f *failingStore) Get(context.Context, string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.data, f.data != nil, nil
}

func (f *failingStore) Set(context.Context, string, []byte, time.Duration) error {
	f.sets++
	return f.setErr
}

func (f *failingStore) Close() error { return nil }

type entry struct {
	Name string `json:"name"`
}

func TestQueryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewQueryCache(NewMemoryStore(time.Minute), 0, nil)
	t.Cleanup(func() { _ = c.Close() })

	var got []entry
	assert.False(t, c.Lookup(ctx, "stations|bozen", &got))

	c.Save(ctx, "stations|bozen", []entry{{Name: "Bozen"}}, time.Minute)

	require.True(t, c.Lookup(ctx, "stations|bozen", &got))
	assert.Equal(t, []entry{{Name: "Bozen"}}, got)

	assert.Equal(t, Stats{Hits: 1, Misses: 1, Writes: 1}, c.Stats())
}

func TestQueryCacheFailsOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		store *failingStore
		log   string
	}{
		{name: "not ready", store: &failingStore{ready: false}, log: "cache store not ready"},
		{name: "read error", store: &failingStore{ready: true, getErr: errors.New("disk I/O error")}, log: "cache read failed"},
		{name: "corrupt entry", store: &failingStore{ready: true, data: []byte("{not json")}, log: "cache entry undecodable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := NewQueryCache(tt.store, 0, logging.NewStructuredLogger(&buf, slog.LevelInfo))

			var got []entry
			assert.False(t, c.Lookup(ctx, "stations|bozen", &got))
			assert.Nil(t, got)

			stats := c.Stats()
			assert.Equal(t, int64(1), stats.Degraded)
			assert.Equal(t, int64(1), stats.Misses)
			assert.Contains(t, buf.String(), tt.log)
		})
	}
}

func TestQueryCacheIgnoresWriteFailures(t *testing.T) {
	var buf bytes.Buffer
	store := &failingStore{ready: true, setErr: errors.New("read-only database")}
	c := NewQueryCache(store, 0, logging.NewStructuredLogger(&buf, slog.LevelInfo))

	assert.NotPanics(t, func() {
		c.Save(context.Background(), "route|a|b", []entry{{Name: "x"}}, time.Minute)
	})

	assert.Equal(t, 1, store.sets)
	assert.Equal(t, int64(1), c.Stats().WriteFailures)
	assert.Equal(t, int64(0), c.Stats().Writes)
	assert.Contains(t, buf.String(), "read-only database")
}

func TestQueryCacheBoundsStoreCalls(t *testing.T) {
	c := NewQueryCache(&deadlineStore{}, 20*time.Millisecond, nil)

	start := time.Now()
	var got []entry
	assert.False(t, c.Lookup(context.Background(), "k", &got))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, int64(1), c.Stats().Degraded)
}

// deadlineStore blocks until the caller's context ends.
type deadlineStore struct{}

func (deadlineStore) Ready(context.Context) bool { return true }

func (deadlineStore) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	<-ctx.Done()
	return nil, false, ctx.Err()
}

func (deadlineStore) Set(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	<-ctx.Done()
	return ctx.Err()
}

func (deadlineStore) Close() error { return nil }
