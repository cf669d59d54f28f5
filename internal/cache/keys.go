package cache

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Endpoint names a cached query kind. It is the first component of every key.
type Endpoint string

const (
	EndpointRoute      Endpoint = "route"
	EndpointStations   Endpoint = "stations"
	EndpointNearby     Endpoint = "nearby"
	EndpointDepartures Endpoint = "departures"
)

const keySeparator = "|"

// Key builds a cache key from an endpoint and its normalised parameters.
func Key(endpoint Endpoint, params ...string) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, string(endpoint))
	for _, p := range params {
		parts = append(parts, NormalizeParam(p))
	}
	return strings.Join(parts, keySeparator)
}

// NormalizeParam makes textual parameters that differ only in case or
// spacing share a key.
func NormalizeParam(p string) string {
	return strings.ToLower(strings.Join(strings.Fields(p), " "))
}

// Coordinate renders a latitude or longitude truncated to 4 decimals
// (about 11 m), so nearby queries share a key.
func Coordinate(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s) > dot+5 {
		s = s[:dot+5]
	}
	truncated, err := strconv.ParseFloat(s, 64)
	if err != nil || truncated == 0 {
		return "0.0000"
	}
	return strconv.FormatFloat(truncated, 'f', 4, 64)
}

// Meters renders a radius as whole meters.
func Meters(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

// TTLs holds the lifetime of each endpoint's entries.
type TTLs struct {
	Route      time.Duration
	Stations   time.Duration
	Nearby     time.Duration
	Departures time.Duration
}

// DefaultTTLs returns the lifetimes used when none are configured.
func DefaultTTLs() TTLs {
	return TTLs{
		Route:      300 * time.Second,
		Stations:   3600 * time.Second,
		Nearby:     3600 * time.Second,
		Departures: 60 * time.Second,
	}
}

// For returns the lifetime for endpoint, falling back to the default when unset.
func (t TTLs) For(endpoint Endpoint) time.Duration {
	defaults := DefaultTTLs()
	pick := func(v, fallback time.Duration) time.Duration {
		if v > 0 {
			return v
		}
		return fallback
	}

	switch endpoint {
	case EndpointRoute:
		return pick(t.Route, defaults.Route)
	case EndpointStations:
		return pick(t.Stations, defaults.Stations)
	case EndpointNearby:
		return pick(t.Nearby, defaults.Nearby)
	case EndpointDepartures:
		return pick(t.Departures, defaults.Departures)
	default:
		return defaults.Departures
	}
}
