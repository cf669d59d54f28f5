package transit

import (
	"strconv"
	"time"
)

const fragmentLayout = "2006-01-02T15:04:05"

// ParseFragment turns a provider date/time record into an instant in loc.
// Parsing is all-or-nothing: any missing or non-numeric field, or a composed
// value that is not a real calendar instant, reports false.
func ParseFragment(f *Fragment, loc *time.Location) (time.Time, bool) {
	if f == nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	fields := [5]string{f.Year.String(), f.Month.String(), f.Day.String(), f.Hour.String(), f.Minute.String()}
	for _, field := range fields {
		if field == "" {
			return time.Time{}, false
		}
		if _, err := strconv.Atoi(field); err != nil {
			return time.Time{}, false
		}
	}

	composed := fields[0] + "-" + pad2(fields[1]) + "-" + pad2(fields[2]) +
		"T" + pad2(fields[3]) + ":" + pad2(fields[4]) + ":00"
	t, err := time.ParseInLocation(fragmentLayout, composed, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func pad2(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
