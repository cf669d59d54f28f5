package query

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"ridehub.org/transit/internal/cache"
	"ridehub.org/transit/internal/logging"
	"ridehub.org/transit/internal/models"
	"ridehub.org/transit/internal/provider"
	"ridehub.org/transit/internal/transit"
	"ridehub.org/transit/internal/utils"
)

// Provider fetches raw payloads from the transit provider.
type Provider interface {
	Trip(ctx context.Context, from, to string) ([]byte, error)
	StopFinder(ctx context.Context, query string) ([]byte, error)
	StopsNear(ctx context.Context, lat, lon, radiusMeters float64) ([]byte, error)
	Departures(ctx context.Context, station string) ([]byte, error)
}

// State is the terminal state a query ends in.
type State string

const (
	StateRejectedInput       State = "rejected_input"
	StateServeCached         State = "serve_cached"
	StateUpstreamUnavailable State = "upstream_unavailable"
	StateRejectedAmbiguous   State = "rejected_ambiguous"
	StateRejectedNotFound    State = "rejected_not_found"
	StateServeFresh          State = "serve_fresh"
)

var allStates = []State{
	StateRejectedInput,
	StateServeCached,
	StateUpstreamUnavailable,
	StateRejectedAmbiguous,
	StateRejectedNotFound,
	StateServeFresh,
}

// Config tunes a Service.
type Config struct {
	TTLs      cache.TTLs
	MaxRadius float64
}

// Service answers transit queries. It validates input, serves from the query
// cache when possible and otherwise fetches, classifies and normalises a
// provider response. It holds no per-query state and is safe for concurrent use.
type Service struct {
	provider   Provider
	cache      *cache.QueryCache
	normalizer *transit.Normalizer
	ttls       cache.TTLs
	maxRadius  float64
	logger     *slog.Logger
	counts     map[State]*atomic.Int64
}

// NewService wires a Service. A nil query cache disables caching.
func NewService(p Provider, qc *cache.QueryCache, n *transit.Normalizer, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRadius <= 0 {
		cfg.MaxRadius = utils.DefaultMaxRadius
	}

	counts := make(map[State]*atomic.Int64, len(allStates))
	for _, s := range allStates {
		counts[s] = new(atomic.Int64)
	}

	return &Service{
		provider:   p,
		cache:      qc,
		normalizer: n,
		ttls:       cfg.TTLs,
		maxRadius:  cfg.MaxRadius,
		logger:     logger.With(slog.String("component", "transit_query")),
		counts:     counts,
	}
}

// SearchRoute finds itineraries between two free-text locations.
func (s *Service) SearchRoute(ctx context.Context, from, to string) ([]models.Itinerary, error) {
	const op = "SearchRoute"
	start := time.Now()

	fields := map[string][]string{}
	addFieldError(fields, "from", utils.ValidateLocationText(from, "from"))
	addFieldError(fields, "to", utils.ValidateLocationText(to, "to"))
	if len(fields) > 0 {
		return nil, s.reject(op, fields, start)
	}

	from, to = utils.SanitizeInput(from), utils.SanitizeInput(to)
	return run(ctx, s, pipeline[models.Itinerary]{
		op:       op,
		endpoint: cache.EndpointRoute,
		key:      cache.Key(cache.EndpointRoute, from, to),
		start:    start,
		fetch: func(ctx context.Context) ([]byte, error) {
			return s.provider.Trip(ctx, from, to)
		},
		normalize: s.normalizer.Itineraries,
	})
}

// SearchStations finds stations by name.
func (s *Service) SearchStations(ctx context.Context, query string) ([]models.Station, error) {
	const op = "SearchStations"
	start := time.Now()

	fields := map[string][]string{}
	addFieldError(fields, "query", utils.ValidateStationQuery(query))
	if len(fields) > 0 {
		return nil, s.reject(op, fields, start)
	}

	query = utils.SanitizeInput(query)
	return run(ctx, s, pipeline[models.Station]{
		op:       op,
		endpoint: cache.EndpointStations,
		key:      cache.Key(cache.EndpointStations, query),
		start:    start,
		fetch: func(ctx context.Context) ([]byte, error) {
			return s.provider.StopFinder(ctx, query)
		},
		normalize: func(body []byte) ([]models.Station, transit.Classification, error) {
			return s.normalizer.Stations(body, nil)
		},
	})
}

// SearchNearbyStations finds stations within radiusMeters of a point, nearest first.
func (s *Service) SearchNearbyStations(ctx context.Context, lat, lon, radiusMeters float64) ([]models.Station, error) {
	const op = "SearchNearbyStations"
	start := time.Now()

	if fields := utils.ValidateLocationParams(lat, lon, radiusMeters, s.maxRadius); len(fields) > 0 {
		return nil, s.reject(op, fields, start)
	}

	// The provider takes whole meters.
	radiusMeters = math.Ceil(radiusMeters)
	origin := models.GeoPoint{Lat: lat, Lon: lon}
	return run(ctx, s, pipeline[models.Station]{
		op:       op,
		endpoint: cache.EndpointNearby,
		key:      cache.Key(cache.EndpointNearby, cache.Coordinate(lat), cache.Coordinate(lon), cache.Meters(radiusMeters)),
		start:    start,
		fetch: func(ctx context.Context) ([]byte, error) {
			return s.provider.StopsNear(ctx, lat, lon, radiusMeters)
		},
		normalize: func(body []byte) ([]models.Station, transit.Classification, error) {
			return s.normalizer.Stations(body, &origin)
		},
	})
}

// GetDepartures returns the live departure board for a station id or name.
func (s *Service) GetDepartures(ctx context.Context, stationIDOrName string) ([]models.Departure, error) {
	const op = "GetDepartures"
	start := time.Now()

	fields := map[string][]string{}
	addFieldError(fields, "station", utils.ValidateLocationText(stationIDOrName, "station"))
	if len(fields) > 0 {
		return nil, s.reject(op, fields, start)
	}

	station := utils.SanitizeInput(stationIDOrName)
	return run(ctx, s, pipeline[models.Departure]{
		op:       op,
		endpoint: cache.EndpointDepartures,
		key:      cache.Key(cache.EndpointDepartures, station),
		start:    start,
		fetch: func(ctx context.Context) ([]byte, error) {
			return s.provider.Departures(ctx, station)
		},
		normalize: s.normalizer.Departures,
	})
}

// Ready reports whether the query cache store is reachable. A service
// without a cache is always ready.
func (s *Service) Ready(ctx context.Context) bool {
	if s.cache == nil {
		return true
	}
	return s.cache.Ready(ctx)
}

// Stats returns how many queries ended in each terminal state.
func (s *Service) Stats() map[State]int64 {
	out := make(map[State]int64, len(s.counts))
	for state, n := range s.counts {
		out[state] = n.Load()
	}
	return out
}

type pipeline[T any] struct {
	op        string
	endpoint  cache.Endpoint
	key       string
	start     time.Time
	fetch     func(ctx context.Context) ([]byte, error)
	normalize func(body []byte) ([]T, transit.Classification, error)
}

func run[T any](ctx context.Context, s *Service, p pipeline[T]) ([]T, error) {
	if s.cache != nil {
		var cached []T
		if s.cache.Lookup(ctx, p.key, &cached) {
			if cached == nil {
				cached = []T{}
			}
			s.finish(p.op, StateServeCached, p.start, slog.String("key", p.key), slog.Int("results", len(cached)))
			return cached, nil
		}
	}

	body, err := p.fetch(ctx)
	if err != nil {
		return nil, s.fail(p.op, StateUpstreamUnavailable, p.start, &Error{
			Kind:    KindUpstreamUnavailable,
			Op:      p.op,
			Timeout: provider.IsTimeout(err),
			Err:     err,
		})
	}

	items, class, err := p.normalize(body)
	if err != nil {
		return nil, s.fail(p.op, StateUpstreamUnavailable, p.start, &Error{Kind: KindUpstreamUnavailable, Op: p.op, Err: err})
	}

	for _, notice := range class.Notices {
		s.logger.Debug("provider notice", slog.String("op", p.op), slog.String("notice", notice))
	}

	switch class.Outcome {
	case transit.OutcomeAmbiguous:
		return nil, s.fail(p.op, StateRejectedAmbiguous, p.start, &Error{
			Kind:       KindAmbiguousLocation,
			Op:         p.op,
			Endpoints:  class.Endpoints,
			Candidates: class.Candidates,
		})
	case transit.OutcomeStopNotFound:
		return nil, s.fail(p.op, StateRejectedNotFound, p.start, &Error{Kind: KindNotFound, Op: p.op})
	case transit.OutcomeUpstreamFailure:
		return nil, s.fail(p.op, StateUpstreamUnavailable, p.start, &Error{
			Kind:   KindUpstreamUnavailable,
			Op:     p.op,
			Detail: class.Detail,
		})
	}

	if items == nil {
		items = []T{}
	}
	if s.cache != nil {
		s.cache.Save(ctx, p.key, items, s.ttls.For(p.endpoint))
	}

	s.finish(p.op, StateServeFresh, p.start, slog.String("key", p.key), slog.Int("results", len(items)))
	return items, nil
}

func (s *Service) reject(op string, fields map[string][]string, start time.Time) error {
	return s.fail(op, StateRejectedInput, start, &Error{Kind: KindInvalidInput, Op: op, Fields: fields})
}

func (s *Service) fail(op string, state State, start time.Time, err *Error) error {
	if state == StateUpstreamUnavailable {
		s.count(state)
		logging.LogError(s.logger, "Transit query failed", err.Err,
			slog.String("op", op),
			slog.String("state", string(state)),
			slog.Bool("timeout", err.Timeout),
			slog.String("detail", err.Detail),
			slog.Duration("duration", time.Since(start)))
		return err
	}
	s.finish(op, state, start, slog.String("error", err.Error()))
	return err
}

func (s *Service) finish(op string, state State, start time.Time, attrs ...slog.Attr) {
	s.count(state)
	attrs = append([]slog.Attr{
		slog.String("op", op),
		slog.String("state", string(state)),
		slog.Duration("duration", time.Since(start)),
	}, attrs...)
	logging.LogOperation(s.logger, "transit_query", attrs...)
}

func (s *Service) count(state State) {
	if n, ok := s.counts[state]; ok {
		n.Add(1)
	}
}

func addFieldError(fields map[string][]string, field string, err error) {
	if err != nil {
		fields[field] = append(fields[field], err.Error())
	}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
