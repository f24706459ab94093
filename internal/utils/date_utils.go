package utils

import (
	"fmt"
	"time"
)

// DayFormat is the calendar-date key format used throughout exports and
// usage rows.
const DayFormat = "2006-01-02"

// ParseDay parses a YYYY-MM-DD date key into a UTC midnight time.
func ParseDay(day string) (time.Time, error) {
	t, err := time.ParseInLocation(DayFormat, day, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", day, err)
	}
	return t, nil
}

// FormatDay renders a time as its YYYY-MM-DD date key.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// TruncateToDay drops the time-of-day component.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
