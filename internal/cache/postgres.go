package cache

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema_postgres.sql
var postgresDDL string

// PostgresStore shares cache entries between service instances through a
// Postgres table.
type PostgresStore struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	janitor *janitor
	closed  atomic.Bool
}

// NewPostgresStore connects to dsn, creates the cache table if needed and
// starts a purge loop running every purgeInterval.
func NewPostgresStore(ctx context.Context, dsn string, purgeInterval time.Duration, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(ctx, postgresDDL, func(ctx context.Context, stmt string) error {
		_, err := pool.Exec(ctx, stmt)
		return err
	}); err != nil {
		pool.Close()
		return nil, err
	}

	store := &PostgresStore{
		pool:    pool,
		logger:  logger.With(slog.String("component", "postgres_cache")),
		janitor: newJanitor(),
	}
	store.janitor.start(purgeInterval, store.logger, store.purge)
	return store, nil
}

func (p *PostgresStore) Ready(ctx context.Context) bool {
	if p.closed.Load() {
		return false
	}
	return p.pool.Ping(ctx) == nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if p.closed.Load() {
		return nil, false, ErrStoreClosed
	}

	var value []byte
	err := p.pool.QueryRow(ctx,
		"SELECT value FROM query_cache WHERE key = $1 AND expires_at > NOW()", key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, true, nil
}

func (p *PostgresStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if p.closed.Load() {
		return ErrStoreClosed
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO query_cache (key, value, expires_at)
		VALUES ($1, $2, NOW() + make_interval(secs => $3))
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, value, ttl.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (p *PostgresStore) purge(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, "DELETE FROM query_cache WHERE expires_at <= NOW()")
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close stops the purge loop and closes the pool.
func (p *PostgresStore) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.janitor.stop()
	p.pool.Close()
	return nil
}
