package transit

import (
	"log/slog"
	"strconv"
	"time"

	"ridehub.org/transit/internal/models"
)

// DepartureTimeLayout is the format of Departure.Scheduled and Departure.Realtime.
const DepartureTimeLayout = "2006-01-02T15:04"

var motTypeLabels = map[string]string{
	"0":  "Train",
	"1":  "Suburban railway",
	"2":  "Underground",
	"3":  "City rail",
	"4":  "Tram",
	"5":  "City bus",
	"6":  "Regional bus",
	"7":  "Express bus",
	"8":  "Cable car",
	"9":  "Ferry",
	"10": "On-demand",
	"11": "Other",
}

// Departures classifies a departure-monitor response and builds its entries.
func (n *Normalizer) Departures(body []byte) ([]models.Departure, Classification, error) {
	var payload departurePayload
	if err := decodePayload(body, &payload); err != nil {
		return nil, Classification{}, err
	}

	class := classifyDepartures(&payload)
	if class.Outcome != OutcomeSuccess {
		return nil, class, nil
	}

	entries, skipped := decodeEach[departureEntry](Sequence(payload.DepartureList, "departure"))
	if skipped > 0 {
		n.logger().Warn("skipped undecodable departures", slog.Int("count", skipped))
	}

	departures := make([]models.Departure, 0, len(entries))
	for _, e := range entries {
		departures = append(departures, n.departure(e))
	}
	return departures, class, nil
}

func (n *Normalizer) departure(e departureEntry) models.Departure {
	scheduled := n.instant(e.DateTime)
	realtime := n.instant(e.RealDateTime)

	d := models.Departure{
		Line:        orDefault(firstNonEmpty(e.ServingLine.Number, e.ServingLine.Symbol), models.UnknownValue),
		Direction:   orDefault(e.ServingLine.Direction.String(), models.UnknownValue),
		Platform:    firstNonEmpty(e.Platform, e.PlatformName),
		Scheduled:   models.NotAvailable,
		ServiceType: serviceType(e.ServingLine),
	}
	if scheduled != nil {
		d.Scheduled = scheduled.Format(DepartureTimeLayout)
	}
	if realtime != nil && (scheduled == nil || !sameMinute(*scheduled, *realtime)) {
		formatted := realtime.Format(DepartureTimeLayout)
		d.Realtime = &formatted
	}

	if delay, err := strconv.Atoi(e.ServingLine.Delay.String()); err == nil && delay > 0 {
		d.DelayMinutes = delay
	}
	if d.DelayMinutes == 0 {
		if diff, ok := n.minutesBetween(scheduled, realtime, "departure delay"); ok && diff > 0 {
			d.DelayMinutes = diff
		}
	}
	return d
}

func serviceType(line servingLine) string {
	if name := line.Name.String(); name != "" {
		return name
	}
	if label, ok := motTypeLabels[line.MotType.String()]; ok {
		return label
	}
	return models.UnknownValue
}

func sameMinute(a, b time.Time) bool {
	return a.Truncate(time.Minute).Equal(b.Truncate(time.Minute))
}
