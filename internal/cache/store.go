package cache

import (
	"context"
	"errors"
	"time"
)

// ErrStoreClosed is returned by stores used after Close.
var ErrStoreClosed = errors.New("cache store closed")

// Store is a key/value store with per-entry expiry. Implementations must be
// safe for concurrent use.
type Store interface {
	// Ready reports whether the store can currently serve requests.
	Ready(ctx context.Context) bool
	// Get returns the value for key. A missing or expired entry is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key, replacing any previous entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("cache ttl must be positive")
	}
	return nil
}
