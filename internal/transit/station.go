package transit

import (
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"ridehub.org/transit/internal/models"
	"ridehub.org/transit/internal/utils"
)

// Stations classifies a stop-finder response and builds its stations. When
// origin is set the response is a proximity search: missing distances are
// filled from origin and the list is ordered nearest first.
func (n *Normalizer) Stations(body []byte, origin *models.GeoPoint) ([]models.Station, Classification, error) {
	var payload stopFinderPayload
	if err := decodePayload(body, &payload); err != nil {
		return nil, Classification{}, err
	}

	class := classifyStopFinder(&payload)
	if class.Outcome != OutcomeSuccess {
		return nil, class, nil
	}

	points, skipped := decodeEach[pointEntry](Sequence(payload.StopFinder.Points, "point"))
	if skipped > 0 {
		n.logger().Warn("skipped undecodable stop points", slog.Int("count", skipped))
	}

	stations := make([]models.Station, 0, len(points))
	for _, p := range points {
		stations = append(stations, buildStation(p, origin))
	}

	if origin != nil {
		sortByDistance(stations)
	}
	return stations, class, nil
}

func buildStation(p pointEntry, origin *models.GeoPoint) models.Station {
	name := orDefault(firstNonEmpty(p.Name, p.Object), models.UnknownValue)
	locality := orDefault(firstNonEmpty(p.Ref.Place, p.Place), models.UnknownValue)

	station := models.Station{
		ID:       firstNonEmpty(p.Ref.ID, p.Stateless),
		Name:     name,
		Locality: locality,
		Coords:   coordsPtr(p.Ref.Coords),
		Type:     orDefault(firstNonEmpty(p.AnyType, p.Type), "stop"),
	}
	if station.ID == "" {
		station.ID = generatedStationID(name, locality)
	}

	if d, ok := parseDistance(firstNonEmpty(p.Distance, p.Ref.Distance)); ok {
		station.DistanceMeters = &d
	} else if origin != nil && station.Coords != nil {
		d := utils.Haversine(origin.Lat, origin.Lon, station.Coords.Lat, station.Coords.Lon)
		station.DistanceMeters = &d
	}
	if origin != nil && station.Coords != nil {
		bearing := utils.BearingBetweenPoints(origin.Lat, origin.Lon, station.Coords.Lat, station.Coords.Lon)
		station.Direction = utils.BearingToCompass(bearing)
	}
	return station
}

// generatedStationID derives a stable id for stops the provider did not
// identify, so repeated searches agree on it.
func generatedStationID(name, locality string) string {
	sum := sha1.Sum([]byte(strings.ToLower(name) + "|" + strings.ToLower(locality)))
	return "gen-" + hex.EncodeToString(sum[:])[:12]
}

func parseDistance(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// sortByDistance orders stations nearest first when the leading entry has a
// distance. Entries without one keep their relative order at the end.
func sortByDistance(stations []models.Station) {
	if len(stations) == 0 || stations[0].DistanceMeters == nil {
		return
	}
	sort.SliceStable(stations, func(i, j int) bool {
		a, b := stations[i].DistanceMeters, stations[j].DistanceMeters
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}
