package controllers

import (
	"testing"
	"time"

	"github.com/readrally/readrally/models"
)

func TestMessageResponseRedactsDeleted(t *testing.T) {
	msg := models.Message{
		ID:         9,
		GroupID:    2,
		UserID:     5,
		SenderName: "ada",
		Text:       "finished chapter four",
		Deleted:    true,
	}

	resp := messageResponse(msg)
	if resp["text"] != "" {
		t.Errorf("deleted message text leaked: %q", resp["text"])
	}
	if resp["deleted"] != true {
		t.Error("deleted flag not set in response")
	}
	if resp["sender_name"] != "ada" {
		t.Error("sender name should survive redaction so the bubble keeps its author")
	}
}

func TestMessageResponseKeepsLiveText(t *testing.T) {
	now := time.Now()
	msg := models.Message{
		ID:       10,
		Text:     "who else is on chapter four?",
		EditedAt: &now,
	}

	resp := messageResponse(msg)
	if resp["text"] != "who else is on chapter four?" {
		t.Errorf("live message text mangled: %q", resp["text"])
	}
	if resp["edited_at"] == nil {
		t.Error("edited_at dropped from response")
	}
}

func TestValidUsername(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"ada", true},
		{"ada-lovelace", true},
		{"AB", true},
		{"a", false},
		{"this-name-is-way-too-long", false},
		{"bad name", false},
		{"semi;colon", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := validUsername(tc.in); got != tc.want {
			t.Errorf("validUsername(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
