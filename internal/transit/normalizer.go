package transit

import (
	"log/slog"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is the provider's local zone when none is configured.
const DefaultTimezone = "Europe/Rome"

// Normalizer turns provider payloads into typed results. All instants are
// interpreted in Location.
type Normalizer struct {
	Location *time.Location
	Logger   *slog.Logger
}

// NewNormalizer returns a Normalizer for the given zone. A nil logger
// falls back to slog.Default.
func NewNormalizer(loc *time.Location, logger *slog.Logger) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		Location: loc,
		Logger:   logger.With(slog.String("component", "transit_normalizer")),
	}
}

// LoadLocation resolves a zone name, falling back to DefaultTimezone when
// name is empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	return time.LoadLocation(name)
}

func (n *Normalizer) logger() *slog.Logger {
	if n.Logger == nil {
		return slog.Default()
	}
	return n.Logger
}

func (n *Normalizer) instant(f *Fragment) *time.Time {
	t, ok := ParseFragment(f, n.Location)
	if !ok {
		return nil
	}
	return &t
}

// minutesBetween wraps MinutesBetween and records negative spans, which
// indicate inconsistent provider data.
func (n *Normalizer) minutesBetween(start, end *time.Time, what string) (int, bool) {
	minutes, ok := MinutesBetween(start, end)
	if !ok && start != nil && end != nil {
		n.logger().Debug("negative time span in provider data",
			slog.String("span", what),
			slog.Time("start", *start),
			slog.Time("end", *end))
	}
	return minutes, ok
}

func firstNonEmpty(values ...Text) string {
	for _, v := range values {
		if s := v.String(); s != "" {
			return s
		}
	}
	return ""
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
