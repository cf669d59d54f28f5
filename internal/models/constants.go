package models

// Common constants used across the application
const (
	// UnknownValue is the fallback text when the provider omits a name, locality or label
	UnknownValue = "Unknown"

	// NotAvailable marks a departure time the provider did not supply in a usable form
	NotAvailable = "N/A"
)

// SegmentKind distinguishes walking legs from legs served by a vehicle.
type SegmentKind string

const (
	SegmentWalk    SegmentKind = "walk"
	SegmentTransit SegmentKind = "transit"
)

// DurationSource records where an itinerary's total duration came from.
type DurationSource string

const (
	DurationCalculated DurationSource = "calculated"
	DurationProvider   DurationSource = "provider"
)
