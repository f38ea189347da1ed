package controllers

import (
	"errors"
	"net/http"
	"testing"

	"gorm.io/gorm"
)

func TestMemberCountAdjustment(t *testing.T) {
	cases := []struct {
		name         string
		delta        int
		rowsAffected int64
		want         int
	}{
		{"join inserts a row", 1, 1, 1},
		{"join no-op writes nothing", 1, 0, 0},
		{"leave deletes a row", -1, 1, -1},
		{"leave of non-member touches nothing", -1, 0, 0},
		{"remove of non-member touches nothing", -1, 0, 0},
	}

	for _, tc := range cases {
		if got := memberCountAdjustment(tc.delta, tc.rowsAffected); got != tc.want {
			t.Errorf("%s: memberCountAdjustment(%d, %d) = %d, want %d",
				tc.name, tc.delta, tc.rowsAffected, got, tc.want)
		}
	}
}

func TestMemberCountStaysInSyncOverOperations(t *testing.T) {
	// member_count mirrors the membership rows when every operation applies
	// exactly the adjustment for the rows it changed
	count := 1 // creator
	rows := 1

	apply := func(delta int, rowsAffected int64) {
		count += memberCountAdjustment(delta, rowsAffected)
		rows += int(rowsAffected) * delta / abs(delta)
	}

	apply(1, 1)  // second member joins
	apply(1, 0)  // duplicate join rejected by the unique index
	apply(-1, 1) // one member leaves
	apply(-1, 0) // removal of someone who is not a member

	if count != rows {
		t.Errorf("member_count = %d diverged from membership rows = %d", count, rows)
	}
	if count != 1 {
		t.Errorf("member_count = %d, want 1 after join/leave round trip", count)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func TestRemoveMemberFailureNotAMember(t *testing.T) {
	status, code, reason, message := removeMemberFailure(gorm.ErrRecordNotFound)
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if reason != "not-a-member" {
		t.Errorf("reason = %q, want not-a-member: the group exists, only the membership is missing", reason)
	}
	if code != 40422 {
		t.Errorf("code = %d, want 40422", code)
	}
	if message == "" {
		t.Error("message is empty")
	}
}

func TestRemoveMemberFailureGeneric(t *testing.T) {
	status, _, reason, _ := removeMemberFailure(errors.New("connection refused"))
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}
	if reason != "" {
		t.Errorf("generic failure carried domain reason %q", reason)
	}
}
