package transit

import (
	"math"
	"time"

	"ridehub.org/transit/internal/models"
)

// MinutesBetween returns the whole minutes from start to end, rounded to the
// nearest minute. It reports false when either instant is missing or end is
// before start.
func MinutesBetween(start, end *time.Time) (int, bool) {
	if start == nil || end == nil {
		return 0, false
	}
	if end.Before(*start) {
		return 0, false
	}
	return int(math.Round(end.Sub(*start).Minutes())), true
}

// TotalDuration sums every available segment duration plus each strictly
// positive wait between a segment's arrival and the next segment's departure.
func TotalDuration(segments []models.Segment) int {
	total := 0
	for i, segment := range segments {
		if segment.DurationMinutes != nil {
			total += *segment.DurationMinutes
		}
		if i == 0 {
			continue
		}
		if wait, ok := MinutesBetween(segments[i-1].Arrival, segment.Departure); ok && wait > 0 {
			total += wait
		}
	}
	return total
}
