package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ridehub.org/transit/internal/appconf"
	"ridehub.org/transit/internal/cache"
	"ridehub.org/transit/internal/logging"
	"ridehub.org/transit/internal/provider"
	"ridehub.org/transit/internal/query"
	"ridehub.org/transit/internal/transit"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config     appconf.Config
	Logger     *slog.Logger
	Transit    *query.Service
	QueryCache *cache.QueryCache
	Provider   *provider.Client
	StartedAt  time.Time
}

// New builds an Application from cfg. A cache store that cannot be opened is
// logged and replaced by the in-memory store so queries keep working.
func New(ctx context.Context, cfg appconf.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := transit.LoadLocation(cfg.Provider.Timezone)
	if err != nil {
		return nil, err
	}

	client, err := provider.NewClient(ProviderConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider client: %w", err)
	}

	store, err := cache.Open(ctx, CacheConfig(cfg), logger)
	if err != nil {
		logging.LogError(logger, "Cache backend unavailable, falling back to memory", err,
			slog.String("backend", cfg.Cache.Backend))
		store = cache.NewMemoryStore(cache.DefaultPurgeInterval)
	}
	qc := cache.NewQueryCache(store, cfg.Cache.Timeout, logger)

	svc := query.NewService(client, qc, transit.NewNormalizer(loc, logger), ServiceConfig(cfg), logger)

	return &Application{
		Config:     cfg,
		Logger:     logger,
		Transit:    svc,
		QueryCache: qc,
		Provider:   client,
		StartedAt:  time.Now(),
	}, nil
}

// Close releases the cache store.
func (app *Application) Close() error {
	if app.QueryCache == nil {
		return nil
	}
	return app.QueryCache.Close()
}

// ProviderConfig maps the provider section onto the client config.
func ProviderConfig(cfg appconf.Config) provider.Config {
	return provider.Config{
		BaseURL:   cfg.Provider.BaseURL,
		Timeout:   cfg.Provider.Timeout,
		RateLimit: cfg.Provider.RateLimit,
		Burst:     cfg.Provider.Burst,
		Language:  cfg.Provider.Language,
		UserAgent: "ridehub-transit/1.0",
	}
}

// CacheConfig maps the cache section onto the store config.
func CacheConfig(cfg appconf.Config) cache.Config {
	return cache.Config{
		Backend:       cache.Backend(cfg.Cache.Backend),
		SQLitePath:    cfg.Cache.SQLitePath,
		PostgresDSN:   cfg.Cache.PostgresDSN,
		PurgeInterval: cfg.Cache.PurgeInterval,
	}
}

// ServiceConfig maps TTLs and the radius ceiling onto the query service config.
func ServiceConfig(cfg appconf.Config) query.Config {
	return query.Config{
		TTLs: cache.TTLs{
			Route:      cfg.Cache.TTL.Route,
			Stations:   cfg.Cache.TTL.Stations,
			Nearby:     cfg.Cache.TTL.Nearby,
			Departures: cfg.Cache.TTL.Departures,
		},
		MaxRadius: cfg.Provider.MaxRadius,
	}
}
