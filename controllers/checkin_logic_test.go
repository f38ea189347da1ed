package controllers

import (
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestAdvanceStreakFirstCheckin(t *testing.T) {
	current, max := advanceStreak(0, 0, "", "2025-03-07")
	if current != 1 || max != 1 {
		t.Errorf("first check-in: got current=%d max=%d, want 1/1", current, max)
	}
}

func TestAdvanceStreakConsecutiveDay(t *testing.T) {
	current, max := advanceStreak(3, 5, "2025-03-06", "2025-03-07")
	if current != 4 {
		t.Errorf("consecutive day: current = %d, want 4", current)
	}
	if max != 5 {
		t.Errorf("consecutive day below the record: max = %d, want 5", max)
	}
}

func TestAdvanceStreakNewRecord(t *testing.T) {
	current, max := advanceStreak(5, 5, "2025-03-06", "2025-03-07")
	if current != 6 || max != 6 {
		t.Errorf("record-extending day: got current=%d max=%d, want 6/6", current, max)
	}
}

func TestAdvanceStreakSameDayInAnotherGroup(t *testing.T) {
	// A user in two groups checks in twice on the same calendar day; the
	// second check-in must not touch the streak.
	current, max := advanceStreak(5, 7, "2025-03-07", "2025-03-07")
	if current != 5 {
		t.Errorf("same-day second check-in: current = %d, want 5 unchanged", current)
	}
	if max != 7 {
		t.Errorf("same-day second check-in: max = %d, want 7 unchanged", max)
	}
}

func TestAdvanceStreakGapResets(t *testing.T) {
	current, max := advanceStreak(7, 9, "2025-03-04", "2025-03-07")
	if current != 1 {
		t.Errorf("after a gap: current = %d, want 1", current)
	}
	if max != 9 {
		t.Errorf("after a gap: max = %d, want 9 preserved", max)
	}
}

func TestAdvanceStreakAcrossMonthBoundary(t *testing.T) {
	current, _ := advanceStreak(10, 10, "2025-02-28", "2025-03-01")
	if current != 11 {
		t.Errorf("month boundary: current = %d, want 11", current)
	}
}

func TestAdvanceStreakAcrossYearBoundary(t *testing.T) {
	current, _ := advanceStreak(30, 30, "2024-12-31", "2025-01-01")
	if current != 31 {
		t.Errorf("year boundary: current = %d, want 31", current)
	}
}

func TestAdvanceStreakLeapDay(t *testing.T) {
	current, _ := advanceStreak(2, 2, "2024-02-29", "2024-03-01")
	if current != 3 {
		t.Errorf("leap day boundary: current = %d, want 3", current)
	}
}

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{gorm.ErrDuplicatedKey, true},
		{errors.New("Error 1062 (23000): Duplicate entry '1-2-2025-03-07' for key 'idx_checkin_user_group_date'"), true},
		{errors.New("Duplicate entry 'READ-AB2C' for key 'invite_code'"), true},
		{errors.New("connection refused"), false},
		{gorm.ErrRecordNotFound, false},
	}

	for _, tc := range cases {
		if got := isDuplicateKeyErr(tc.err); got != tc.want {
			t.Errorf("isDuplicateKeyErr(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
