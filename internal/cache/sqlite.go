package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed schema_sqlite.sql
var sqliteDDL string

// SQLiteStore persists entries in a SQLite file. Use ":memory:" for a
// process-local database.
type SQLiteStore struct {
	db      *sql.DB
	logger  *slog.Logger
	janitor *janitor
	closed  atomic.Bool
	now     func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at path and starts
// a purge loop running every purgeInterval.
func NewSQLiteStore(path string, purgeInterval time.Duration, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening cache database: %w", err)
	}

	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(time.Hour)
	}

	ctx := context.Background()
	if path != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("error enabling WAL: %w", err)
		}
	}
	if err := migrate(ctx, sqliteDDL, func(ctx context.Context, stmt string) error {
		_, err := db.ExecContext(ctx, stmt)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &SQLiteStore{
		db:      db,
		logger:  logger.With(slog.String("component", "sqlite_cache")),
		janitor: newJanitor(),
		now:     time.Now,
	}
	store.janitor.start(purgeInterval, store.logger, store.purge)
	return store, nil
}

func (s *SQLiteStore) Ready(ctx context.Context) bool {
	if s.closed.Load() {
		return false
	}
	return s.db.PingContext(ctx) == nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrStoreClosed
	}

	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM query_cache WHERE key = ? AND expires_at > ?",
		key, s.now().UnixMilli(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error reading cache entry: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_cache (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, s.now().Add(ttl).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error writing cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM query_cache WHERE expires_at <= ?", s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("error purging cache entries: %w", err)
	}
	return res.RowsAffected()
}

// Close stops the purge loop and closes the database.
func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.janitor.stop()
	return s.db.Close()
}

// migrate runs each statement of an embedded schema in order.
func migrate(ctx context.Context, ddl string, exec func(ctx context.Context, stmt string) error) error {
	for _, stmt := range strings.Split(ddl, "-- migrate") {
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" {
			continue
		}
		if err := exec(ctx, trimmed); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", trimmed, err)
		}
	}
	return nil
}
