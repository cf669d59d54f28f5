package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		endpoint Endpoint
		params   []string
		expected string
	}{
		{name: "route", endpoint: EndpointRoute, params: []string{"Bozen", "Meran"}, expected: "route|bozen|meran"},
		{name: "case and spacing", endpoint: EndpointStations, params: []string{"  Bozen   Bahnhof "}, expected: "stations|bozen bahnhof"},
		{name: "no params", endpoint: EndpointDepartures, expected: "departures"},
		{name: "nearby", endpoint: EndpointNearby, params: []string{Coordinate(46.49831), Coordinate(11.35489), Meters(500)}, expected: "nearby|46.4983|11.3548|500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Key(tt.endpoint, tt.params...))
		})
	}
}

func TestKeyDistinguishesDirection(t *testing.T) {
	assert.NotEqual(t, Key(EndpointRoute, "Bozen", "Meran"), Key(EndpointRoute, "Meran", "Bozen"))
}

func TestCoordinate(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{46.4983, "46.4983"},
		{46.49839999, "46.4983"},
		{46.5, "46.5000"},
		{46.50001, "46.5000"},
		{-73.98579, "-73.9857"},
		{0, "0.0000"},
		{-0.00001, "0.0000"},
		{11, "11.0000"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Coordinate(tt.in))
		})
	}
}

func TestTTLsFor(t *testing.T) {
	defaults := DefaultTTLs()
	assert.Equal(t, 300*time.Second, defaults.For(EndpointRoute))
	assert.Equal(t, time.Hour, defaults.For(EndpointStations))
	assert.Equal(t, time.Hour, defaults.For(EndpointNearby))
	assert.Equal(t, time.Minute, defaults.For(EndpointDepartures))

	custom := TTLs{Departures: 30 * time.Second}
	assert.Equal(t, 30*time.Second, custom.For(EndpointDepartures))
	assert.Equal(t, 300*time.Second, custom.For(EndpointRoute), "unset values fall back to defaults")
}
