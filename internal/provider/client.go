package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"ridehub.org/transit/internal/logging"
)

// Provider endpoint names, appended to the base URL.
const (
	EndpointTrip       = "XML_TRIP_REQUEST2"
	EndpointStopFinder = "XML_STOPFINDER_REQUEST"
	EndpointDepartures = "XML_DM_REQUEST"
)

const (
	DefaultTimeout   = 8 * time.Second
	DefaultRateLimit = 10.0
	DefaultBurst     = 20
	DefaultLanguage  = "de"

	// maxBodyBytes caps how much of a provider response is read.
	maxBodyBytes = 8 << 20

	coordFormat = "WGS84[DD.DDDDD]"
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second toward the provider
	Burst     int
	Language  string
	UserAgent string
}

// Stats is a snapshot of Client counters.
type Stats struct {
	Calls    int64
	Failures int64
}

// Client fetches raw JSON payloads from the provider. It never interprets them.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	language  string
	userAgent string
	logger    *slog.Logger

	calls    atomic.Int64
	failures atomic.Int64
}

// NewClient validates cfg and returns a Client. Zero values take the package defaults.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid provider base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("invalid provider base URL %q", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ridehub-transit/1.0"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		language:  cfg.Language,
		userAgent: cfg.UserAgent,
		logger:    logger.With(slog.String("component", "provider_client")),
	}, nil
}

// Trip requests journeys between two free-text locations.
func (c *Client) Trip(ctx context.Context, from, to string) ([]byte, error) {
	q := url.Values{}
	q.Set("type_origin", "any")
	q.Set("name_origin", from)
	q.Set("type_destination", "any")
	q.Set("name_destination", to)
	q.Set("useRealtime", "1")
	return c.get(ctx, EndpointTrip, q)
}

// StopFinder searches stops by name.
func (c *Client) StopFinder(ctx context.Context, query string) ([]byte, error) {
	q := url.Values{}
	q.Set("type_sf", "any")
	q.Set("name_sf", query)
	q.Set("anyObjFilter_sf", "2") // stops only
	q.Set("locationServerActive", "1")
	return c.get(ctx, EndpointStopFinder, q)
}

// StopsNear searches stops within radiusMeters of a point.
func (c *Client) StopsNear(ctx context.Context, lat, lon, radiusMeters float64) ([]byte, error) {
	q := url.Values{}
	q.Set("type_sf", "coord")
	q.Set("name_sf", fmt.Sprintf("%s:%s:%s",
		strconv.FormatFloat(lon, 'f', 6, 64), strconv.FormatFloat(lat, 'f', 6, 64), coordFormat))
	q.Set("radius_sf", strconv.FormatFloat(math.Ceil(radiusMeters), 'f', 0, 64))
	q.Set("anyObjFilter_sf", "2")
	q.Set("locationServerActive", "1")
	return c.get(ctx, EndpointStopFinder, q)
}

// Departures requests the live departure board for a stop id or name.
func (c *Client) Departures(ctx context.Context, station string) ([]byte, error) {
	q := url.Values{}
	q.Set("type_dm", "any")
	q.Set("name_dm", station)
	q.Set("mode", "direct")
	q.Set("useRealtime", "1")
	return c.get(ctx, EndpointDepartures, q)
}

// Stats returns the current counters.
func (c *Client) Stats() Stats {
	return Stats{Calls: c.calls.Load(), Failures: c.failures.Load()}
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	c.calls.Add(1)
	start := time.Now()

	body, err := c.fetch(ctx, endpoint, q)
	if err != nil {
		c.failures.Add(1)
		logging.LogError(c.logger, "Provider request failed", err,
			slog.String("endpoint", endpoint),
			slog.Duration("duration", time.Since(start)))
		return nil, err
	}

	logging.LogOperation(c.logger, "provider_request",
		slog.String("endpoint", endpoint),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", time.Since(start)))
	return body, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Endpoint: endpoint, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	q.Set("outputFormat", "JSON")
	q.Set("coordOutputFormat", coordFormat)
	q.Set("language", c.language)

	target := c.baseURL.ResolveReference(&url.URL{Path: endpoint, RawQuery: q.Encode()})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &Error{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Endpoint: endpoint, Err: err}
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "http_response_body")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &Error{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// Error describes a failed provider request.
type Error struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: unexpected status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("provider %s: %v", e.Endpoint, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a provider request that ran out of time.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
