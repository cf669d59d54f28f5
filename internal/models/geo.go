package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// GeoPoint is a WGS84 position. It serialises as [lat, lon].
type GeoPoint struct {
	Lat float64
	Lon float64
}

// NewGeoPoint returns a point when both coordinates are finite and in range.
func NewGeoPoint(lat, lon float64) (GeoPoint, bool) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return GeoPoint{}, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: lat, Lon: lon}, true
}

func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lon})
}

func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("geo point: %w", err)
	}
	point, ok := NewGeoPoint(pair[0], pair[1])
	if !ok {
		return fmt.Errorf("geo point out of range: %v", pair)
	}
	*p = point
	return nil
}
