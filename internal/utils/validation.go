package utils

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinQueryLength is the shortest station search the provider answers usefully.
const MinQueryLength = 3

// DefaultMaxRadius bounds proximity searches when no limit is configured.
const DefaultMaxRadius = 10000.0

var (
	// Detect potentially dangerous characters - more focused on injection patterns
	dangerousPattern = regexp.MustCompile(`[<>]|--|\/\*|\*\/|;.*--`)

	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ValidateStationQuery validates a free-text station search.
func ValidateStationQuery(query string) error {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return fmt.Errorf("query must be at least %d characters", MinQueryLength)
	}
	return validateText(query, "query")
}

// ValidateLocationText validates a route endpoint or a station reference.
func ValidateLocationText(text, field string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	return validateText(text, field)
}

func validateText(text, field string) error {
	if len(text) > 200 {
		return fmt.Errorf("%s too long (max 200 characters)", field)
	}
	if dangerousPattern.MatchString(text) {
		return fmt.Errorf("%s contains invalid characters", field)
	}
	return nil
}

// ValidateLatitude validates latitude values
func ValidateLatitude(lat float64) error {
	if math.IsNaN(lat) || lat < -90.0 || lat > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude validates longitude values
func ValidateLongitude(lon float64) error {
	if math.IsNaN(lon) || lon < -180.0 || lon > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateRadius validates a proximity radius in meters. A non-positive
// maxRadius falls back to DefaultMaxRadius.
func ValidateRadius(radius, maxRadius float64) error {
	if maxRadius <= 0 {
		maxRadius = DefaultMaxRadius
	}
	if math.IsNaN(radius) || radius <= 0 {
		return errors.New("radius must be positive")
	}
	if radius > maxRadius {
		return fmt.Errorf("radius too large (max %.0f meters)", maxRadius)
	}
	return nil
}

// ValidateLocationParams validates a proximity search and returns the
// problems keyed by field. The map is empty when the input is valid.
func ValidateLocationParams(lat, lon, radius, maxRadius float64) map[string][]string {
	fieldErrors := make(map[string][]string)

	if err := ValidateLatitude(lat); err != nil {
		fieldErrors["lat"] = append(fieldErrors["lat"], err.Error())
	}
	if err := ValidateLongitude(lon); err != nil {
		fieldErrors["lon"] = append(fieldErrors["lon"], err.Error())
	}
	if err := ValidateRadius(radius, maxRadius); err != nil {
		fieldErrors["radius"] = append(fieldErrors["radius"], err.Error())
	}

	return fieldErrors
}

// SanitizeInput removes HTML tags, collapses runs of whitespace and trims.
func SanitizeInput(input string) string {
	sanitized := htmlTagPattern.ReplaceAllString(input, "")
	sanitized = whitespacePattern.ReplaceAllString(sanitized, " ")
	return strings.TrimSpace(sanitized)
}
