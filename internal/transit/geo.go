package transit

import (
	"strconv"
	"strings"

	"ridehub.org/transit/internal/models"
)

// ParseCoords reads the provider's packed "<lon>,<lat>" string. Note the
// result is (lat, lon).
func ParseCoords(packed string) (models.GeoPoint, bool) {
	parts := strings.Split(packed, ",")
	if len(parts) != 2 {
		return models.GeoPoint{}, false
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.GeoPoint{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.GeoPoint{}, false
	}

	return models.NewGeoPoint(lat, lon)
}

func coordsPtr(packed Text) *models.GeoPoint {
	point, ok := ParseCoords(packed.String())
	if !ok {
		return nil
	}
	return &point
}
