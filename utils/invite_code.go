package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"
)

// inviteAlphabet deliberately excludes 0/O and 1/I so codes survive being
// read aloud or copied from a screenshot.
const (
	inviteAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	inviteCodeLength = 4
)

// GenerateInviteCode builds a shareable group code: PREFIX-XXXX with the
// random part drawn from the unambiguous alphabet. Uniqueness is not
// guaranteed here; callers insert under a unique column and retry on
// collision.
func GenerateInviteCode(prefix string) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(strings.TrimSpace(prefix)))
	b.WriteByte('-')
	for i := 0; i < inviteCodeLength; i++ {
		v, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteAlphabet))))
		if err != nil {
			// fallback to time based modulo if crypto fails
			v = big.NewInt(time.Now().UnixNano() % int64(len(inviteAlphabet)))
		}
		b.WriteByte(inviteAlphabet[v.Int64()])
	}
	return b.String()
}

// NormalizeInviteCode uppercases and trims a user supplied code so lookups
// are exact-match.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
