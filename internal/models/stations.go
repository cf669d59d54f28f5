package models

// Station is a stop returned by name or proximity search.
type Station struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Locality       string    `json:"locality"`
	Coords         *GeoPoint `json:"coords,omitempty"`
	Type           string    `json:"type"`
	DistanceMeters *float64  `json:"distance,omitempty"`
	// Direction is the compass heading from the search point, set for proximity results.
	Direction string `json:"direction,omitempty"`
}
