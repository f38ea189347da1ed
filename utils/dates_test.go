package utils

import (
	"testing"
	"time"
)

func TestDayString(t *testing.T) {
	ts := time.Date(2025, 3, 7, 23, 59, 59, 0, time.Local)
	if got := DayString(ts); got != "2025-03-07" {
		t.Errorf("DayString = %q, want 2025-03-07", got)
	}
}

func TestIsYesterday(t *testing.T) {
	cases := []struct {
		prev, day string
		want      bool
	}{
		{"2025-03-06", "2025-03-07", true},
		{"2025-03-07", "2025-03-07", false},
		{"2025-03-05", "2025-03-07", false},
		{"2025-03-08", "2025-03-07", false},
		{"2024-12-31", "2025-01-01", true},
		{"2024-02-28", "2024-02-29", true},
		{"2023-02-28", "2023-03-01", true},
		{"", "2025-03-07", false},
		{"garbage", "2025-03-07", false},
	}

	for _, tc := range cases {
		if got := IsYesterday(tc.prev, tc.day); got != tc.want {
			t.Errorf("IsYesterday(%q, %q) = %v, want %v", tc.prev, tc.day, got, tc.want)
		}
	}
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2025, 6, 15, 18, 4, 33, 912, time.Local)
	got := StartOfDay(ts)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Errorf("StartOfDay left time-of-day components: %v", got)
	}
	if got.Year() != 2025 || got.Month() != 6 || got.Day() != 15 {
		t.Errorf("StartOfDay changed the date: %v", got)
	}
}

func TestTodayFormat(t *testing.T) {
	got := Today()
	if _, err := time.ParseInLocation("2006-01-02", got, time.Local); err != nil {
		t.Errorf("Today() = %q, not a YYYY-MM-DD date: %v", got, err)
	}
}
