package utils

import "time"

// Calendar days are handled as local YYYY-MM-DD strings: that is the
// uniqueness key for check-ins, it sorts correctly as a string, and it
// avoids timezone drift between a DATE column and timestamps.

const dayLayout = "2006-01-02"

// DayString formats a time as its local calendar day.
func DayString(t time.Time) string {
	return t.Format(dayLayout)
}

// Today returns the current local calendar day.
func Today() string {
	return DayString(time.Now())
}

// IsYesterday reports whether prev is exactly one calendar day before day.
// Both arguments are YYYY-MM-DD strings; malformed input is never yesterday.
func IsYesterday(prev, day string) bool {
	d, err := time.Parse(dayLayout, day)
	if err != nil {
		return false
	}
	return prev == DayString(d.AddDate(0, 0, -1))
}

// StartOfDay truncates a time to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
