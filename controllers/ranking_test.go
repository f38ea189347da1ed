package controllers

import "testing"

func rankedFixture() []rankedMember {
	// Input order is join order
	return []rankedMember{
		{UserID: 1, Username: "ada", Checkins: 3, IsCreator: true},
		{UserID: 2, Username: "bo", Checkins: 7},
		{UserID: 3, Username: "cy", Checkins: 3},
		{UserID: 4, Username: "di", Checkins: 0},
	}
}

func TestBuildRankingOrdersByCheckinsDescending(t *testing.T) {
	entries := buildRanking(rankedFixture(), 0)
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Checkins > entries[i-1].Checkins {
			t.Errorf("entry %d (%d check-ins) ranked below entry %d (%d)", i-1, entries[i-1].Checkins, i, entries[i].Checkins)
		}
	}
	if entries[0].UserID != 2 {
		t.Errorf("top entry is user %d, want 2", entries[0].UserID)
	}
}

func TestBuildRankingTieBreaksByJoinOrder(t *testing.T) {
	entries := buildRanking(rankedFixture(), 0)
	// ada and cy both have 3 check-ins; ada joined first
	if entries[1].UserID != 1 || entries[2].UserID != 3 {
		t.Errorf("tie order wrong: got users %d, %d at positions 2-3, want 1 then 3", entries[1].UserID, entries[2].UserID)
	}
}

func TestBuildRankingPositionsAreContiguous(t *testing.T) {
	entries := buildRanking(rankedFixture(), 0)
	for i, e := range entries {
		if e.Position != i+1 {
			t.Errorf("entry %d has position %d, want %d", i, e.Position, i+1)
		}
	}
}

func TestBuildRankingIncludesZeroCheckinMembers(t *testing.T) {
	entries := buildRanking(rankedFixture(), 0)
	last := entries[len(entries)-1]
	if last.UserID != 4 || last.Checkins != 0 {
		t.Errorf("zero-check-in member missing or misplaced: got user %d with %d", last.UserID, last.Checkins)
	}
}

func TestBuildRankingLimitTruncates(t *testing.T) {
	entries := buildRanking(rankedFixture(), 2)
	if len(entries) != 2 {
		t.Fatalf("got %d entries with limit 2, want 2", len(entries))
	}
	if entries[0].UserID != 2 || entries[1].UserID != 1 {
		t.Errorf("truncated ranking kept wrong entries: %d, %d", entries[0].UserID, entries[1].UserID)
	}
}

func TestBuildRankingLimitLargerThanInput(t *testing.T) {
	entries := buildRanking(rankedFixture(), 100)
	if len(entries) != 4 {
		t.Errorf("got %d entries, want all 4", len(entries))
	}
}

func TestBuildRankingEmptyInput(t *testing.T) {
	entries := buildRanking(nil, 0)
	if len(entries) != 0 {
		t.Errorf("got %d entries from empty input", len(entries))
	}
}

func TestBuildRankingDoesNotMutateInput(t *testing.T) {
	members := rankedFixture()
	buildRanking(members, 0)
	if members[0].UserID != 1 || members[1].UserID != 2 {
		t.Error("buildRanking reordered its input slice")
	}
}
