package music

import (
	"fmt"
	"time"
)

// ParseReleaseDate parses a catalog release date, accepting the partial
// forms the upstream emits. A year-only value resolves to January 1st and a
// year-month value to the 1st of that month.
func ParseReleaseDate(value string) (time.Time, error) {
	var layout string
	switch len(value) {
	case 4:
		layout = "2006"
	case 7:
		layout = "2006-01"
	case 10:
		layout = "2006-01-02"
	default:
		return time.Time{}, fmt.Errorf("release date %q: unrecognized format", value)
	}
	parsed, err := time.ParseInLocation(layout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("release date %q: %w", value, err)
	}
	return parsed, nil
}

// FormatReleaseDate renders a date in the canonical YYYY-MM-DD form used in
// output and storage.
func FormatReleaseDate(date time.Time) string {
	return date.UTC().Format("2006-01-02")
}
