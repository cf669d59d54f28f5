package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	tests := []struct {
		name   string
		lat    float64
		lon    float64
		wantOK bool
	}{
		{"bozen", 46.50, 11.35, true},
		{"poles and antimeridian", -90, 180, true},
		{"latitude too high", 90.01, 11.35, false},
		{"longitude too low", 46.5, -180.5, false},
		{"not a number", math.NaN(), 11.35, false},
		{"infinite", 46.5, math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point, ok := NewGeoPoint(tt.lat, tt.lon)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.lat, point.Lat)
				assert.Equal(t, tt.lon, point.Lon)
			}
		})
	}
}

func TestGeoPointJSON(t *testing.T) {
	raw, err := json.Marshal(GeoPoint{Lat: 46.5, Lon: 11.35})
	require.NoError(t, err)
	assert.JSONEq(t, `[46.5, 11.35]`, string(raw))

	var point GeoPoint
	require.NoError(t, json.Unmarshal([]byte(`[46.5, 11.35]`), &point))
	assert.Equal(t, GeoPoint{Lat: 46.5, Lon: 11.35}, point)

	assert.Error(t, json.Unmarshal([]byte(`[146.5, 11.35]`), &point))
}
