package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Backend selects a Store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// DefaultPurgeInterval is how often expired entries are removed.
const DefaultPurgeInterval = 5 * time.Minute

// Config selects and configures the backing store.
type Config struct {
	Backend       Backend
	SQLitePath    string
	PostgresDSN   string
	PurgeInterval time.Duration
}

// Open creates the store described by cfg.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	interval := cfg.PurgeInterval
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}

	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStore(interval), nil
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite cache backend requires a path")
		}
		return NewSQLiteStore(cfg.SQLitePath, interval, logger)
	case BackendPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres cache backend requires a DSN")
		}
		return NewPostgresStore(ctx, cfg.PostgresDSN, interval, logger)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
