package cache

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process memory. Entries do not survive a restart.
type MemoryStore struct {
	items  *gocache.Cache
	closed atomic.Bool
}

// NewMemoryStore creates a store whose expired entries are swept every cleanupInterval.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		items: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

func (m *MemoryStore) Ready(ctx context.Context) bool {
	return !m.closed.Load() && ctx.Err() == nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.closed.Load() {
		return nil, false, ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	v, ok := m.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	stored, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), stored...), true, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.closed.Load() {
		return ErrStoreClosed
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Len returns the number of entries, including expired ones not yet swept.
func (m *MemoryStore) Len() int {
	return m.items.ItemCount()
}

func (m *MemoryStore) Close() error {
	if m.closed.CompareAndSwap(false, true) {
		m.items.Flush()
	}
	return nil
}
