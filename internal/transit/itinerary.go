package transit

import (
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/twpayne/go-polyline"
	"ridehub.org/transit/internal/models"
)

var walkModeTypes = map[string]bool{"99": true, "100": true}

var walkNameMarkers = []string{"fuß", "fuss", "walk", "piedi"}

// Itineraries classifies a trip response and, on success, builds its
// itineraries. A decode error means the body was not a usable payload.
func (n *Normalizer) Itineraries(body []byte) ([]models.Itinerary, Classification, error) {
	var payload tripPayload
	if err := decodePayload(body, &payload); err != nil {
		return nil, Classification{}, err
	}

	class := classifyTrip(&payload)
	if class.Outcome != OutcomeSuccess {
		return nil, class, nil
	}

	trips, skipped := decodeEach[tripEntry](Sequence(payload.Trips, "trip"))
	if skipped > 0 {
		n.logger().Warn("skipped undecodable trips", slog.Int("count", skipped))
	}

	itineraries := make([]models.Itinerary, 0, len(trips))
	for i, trip := range trips {
		itinerary, ok := n.itinerary(trip)
		if !ok {
			n.logger().Debug("dropping trip without segments", slog.Int("index", i))
			continue
		}
		itineraries = append(itineraries, itinerary)
	}
	return itineraries, class, nil
}

func (n *Normalizer) itinerary(trip tripEntry) (models.Itinerary, bool) {
	legs, skipped := decodeEach[legEntry](Sequence(trip.Legs, "leg"))
	if skipped > 0 {
		n.logger().Warn("skipped undecodable legs", slog.Int("count", skipped))
	}
	if len(legs) == 0 {
		return models.Itinerary{}, false
	}

	segments := make([]models.Segment, 0, len(legs))
	for _, leg := range legs {
		segments = append(segments, n.segment(leg))
	}

	itinerary := models.Itinerary{
		Segments:         segments,
		ProviderDuration: trip.Duration.String(),
		Interchanges:     interchanges(trip.Interchange, segments),
	}
	if total := TotalDuration(segments); total > 0 {
		itinerary.DurationMinutes = &total
		itinerary.DurationSource = models.DurationCalculated
	} else {
		itinerary.DurationSource = models.DurationProvider
		if minutes, ok := parseProviderDuration(itinerary.ProviderDuration); ok {
			itinerary.DurationMinutes = &minutes
		}
	}
	return itinerary, true
}

func (n *Normalizer) segment(leg legEntry) models.Segment {
	points, _ := decodeEach[pointEntry](Sequence(leg.Points, "point"))

	segment := models.Segment{
		Kind:        legKind(leg),
		Origin:      models.UnknownValue,
		Destination: models.UnknownValue,
	}
	if len(points) > 0 {
		first, last := points[0], points[len(points)-1]
		segment.Origin = orDefault(firstNonEmpty(first.Name, first.Object), models.UnknownValue)
		segment.Destination = orDefault(firstNonEmpty(last.Name, last.Object), models.UnknownValue)
		segment.OriginCoords = coordsPtr(first.Ref.Coords)
		segment.DestinationCoords = coordsPtr(last.Ref.Coords)
		segment.Departure = n.instant(first.DateTime)
		segment.Arrival = n.instant(last.DateTime)
		segment.Platform = first.Ref.Platform.String()
	}

	calculated, calculatedOK := n.minutesBetween(segment.Departure, segment.Arrival, "leg")
	reported, reportedOK := ceilMinutes(leg.TimeMinute)

	if segment.Kind == models.SegmentWalk {
		switch {
		case reportedOK:
			segment.DurationMinutes = &reported
		case calculatedOK:
			segment.DurationMinutes = &calculated
		}
	} else {
		switch {
		case calculatedOK:
			segment.DurationMinutes = &calculated
		case reportedOK:
			segment.DurationMinutes = &reported
		}
		segment.Line = orDefault(firstNonEmpty(leg.Mode.Number, leg.Mode.Symbol, leg.Mode.Name), models.UnknownValue)
		segment.Direction = leg.Mode.Destination.String()
		segment.Operator = operator(leg)
	}

	segment.Polyline = legPolyline(leg, points)
	return segment
}

func legKind(leg legEntry) models.SegmentKind {
	if walkModeTypes[leg.Mode.Type.String()] || strings.EqualFold(leg.Type.String(), "walk") {
		return models.SegmentWalk
	}
	name := strings.ToLower(leg.Mode.Name.String())
	for _, marker := range walkNameMarkers {
		if strings.Contains(name, marker) {
			return models.SegmentWalk
		}
	}
	return models.SegmentTransit
}

func operator(leg legEntry) *string {
	var candidates []Text
	if leg.Operator != nil {
		candidates = append(candidates, leg.Operator.Name)
	}
	candidates = append(candidates, leg.Mode.Diva.Operator, leg.Mode.Name)
	name := firstNonEmpty(candidates...)
	if name == "" {
		return nil
	}
	return &name
}

// legPolyline encodes the leg path, preferring the full stop sequence over
// the boarding and alighting points.
func legPolyline(leg legEntry, points []pointEntry) string {
	path := pathCoords(Sequence(leg.StopSeq, "point"))
	if len(path) < 2 {
		path = path[:0]
		for _, p := range points {
			if c, ok := ParseCoords(p.Ref.Coords.String()); ok {
				path = append(path, []float64{c.Lat, c.Lon})
			}
		}
	}
	if len(path) < 2 {
		return ""
	}
	return string(polyline.EncodeCoords(path))
}

func pathCoords(items []json.RawMessage) [][]float64 {
	points, _ := decodeEach[pointEntry](items)
	path := make([][]float64, 0, len(points))
	for _, p := range points {
		if c, ok := ParseCoords(p.Ref.Coords.String()); ok {
			path = append(path, []float64{c.Lat, c.Lon})
		}
	}
	return path
}

func ceilMinutes(t Text) (int, bool) {
	v, err := strconv.ParseFloat(t.String(), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return int(math.Ceil(v)), true
}

// parseProviderDuration reads "HH:MM" or a plain minute count.
func parseProviderDuration(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if hours, minutes, found := strings.Cut(s, ":"); found {
		h, err := strconv.Atoi(strings.TrimSpace(hours))
		if err != nil || h < 0 {
			return 0, false
		}
		m, err := strconv.Atoi(strings.TrimSpace(minutes))
		if err != nil || m < 0 || m > 59 {
			return 0, false
		}
		return h*60 + m, true
	}
	m, err := strconv.Atoi(s)
	if err != nil || m < 0 {
		return 0, false
	}
	return m, true
}

func interchanges(reported Text, segments []models.Segment) int {
	if v, err := strconv.Atoi(reported.String()); err == nil && v >= 0 {
		return v
	}
	transit := 0
	for _, s := range segments {
		if s.Kind == models.SegmentTransit {
			transit++
		}
	}
	if transit == 0 {
		return 0
	}
	return transit - 1
}
