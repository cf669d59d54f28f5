package models

// Departure is one live departure at a stop.
type Departure struct {
	Line      string `json:"line"`
	Direction string `json:"direction"`
	Platform  string `json:"platform"`
	// Scheduled is formatted as 2006-01-02T15:04, or NotAvailable.
	Scheduled string `json:"scheduled"`
	// Realtime is only set when it differs from Scheduled.
	Realtime     *string `json:"realtime,omitempty"`
	DelayMinutes int     `json:"delay"`
	ServiceType  string  `json:"serviceType"`
}
