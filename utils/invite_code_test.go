package utils

import (
	"strings"
	"testing"
)

func TestGenerateInviteCodeFormat(t *testing.T) {
	code := GenerateInviteCode("READ")
	if !strings.HasPrefix(code, "READ-") {
		t.Fatalf("code %q does not carry the READ- prefix", code)
	}
	suffix := strings.TrimPrefix(code, "READ-")
	if len(suffix) != inviteCodeLength {
		t.Fatalf("code suffix %q has length %d, want %d", suffix, len(suffix), inviteCodeLength)
	}
	for _, r := range suffix {
		if !strings.ContainsRune(inviteAlphabet, r) {
			t.Errorf("code %q contains %q outside the allowed alphabet", code, r)
		}
	}
}

func TestGenerateInviteCodeExcludesAmbiguousCharacters(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := GenerateInviteCode("X")
		suffix := strings.TrimPrefix(code, "X-")
		if strings.ContainsAny(suffix, "0O1I") {
			t.Fatalf("code %q contains an ambiguous character", code)
		}
	}
}

func TestGenerateInviteCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[GenerateInviteCode("READ")] = true
	}
	if len(seen) < 2 {
		t.Error("expected distinct codes across 50 generations")
	}
}

func TestNormalizeInviteCode(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"read-ab2c", "READ-AB2C"},
		{"  READ-AB2C  ", "READ-AB2C"},
		{"Read-Ab2C", "READ-AB2C"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeInviteCode(tc.in); got != tc.want {
			t.Errorf("NormalizeInviteCode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
