package models

import "time"

// Segment is one leg of an itinerary.
type Segment struct {
	Kind              SegmentKind `json:"kind"`
	Origin            string      `json:"origin"`
	Destination       string      `json:"destination"`
	OriginCoords      *GeoPoint   `json:"originCoords,omitempty"`
	DestinationCoords *GeoPoint   `json:"destinationCoords,omitempty"`
	Departure         *time.Time  `json:"departure,omitempty"`
	Arrival           *time.Time  `json:"arrival,omitempty"`
	DurationMinutes   *int        `json:"durationMinutes,omitempty"`
	Line              string      `json:"line"`
	Direction         string      `json:"direction"`
	Operator          *string     `json:"operator,omitempty"`
	Platform          string      `json:"platform,omitempty"`
	// Polyline is the encoded path through every point the provider listed for the leg.
	Polyline string `json:"polyline,omitempty"`
}

// Itinerary is one door-to-door trip option. Segments is never empty.
type Itinerary struct {
	Segments         []Segment      `json:"segments"`
	DurationMinutes  *int           `json:"durationMinutes,omitempty"`
	ProviderDuration string         `json:"providerDuration,omitempty"`
	DurationSource   DurationSource `json:"durationSource"`
	Interchanges     int            `json:"interchanges"`
}
