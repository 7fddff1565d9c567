// Package daily ties game state to the calendar day: deterministic puzzle
// selection per (date, session) and the daily lock over the key-value store.
package daily

import (
	"time"
)

const dateLayout = "2006-01-02"

// DateKey returns YYYY-MM-DD for t in loc (local time when loc is nil).
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dateLayout)
}

// Hash is a 32-bit rolling polynomial string hash (h = h*31 + c, wrapping).
func Hash(s string) int32 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	return h
}

// SelectIndex picks a deterministic index in [0, n) for a date and session.
// The same pair always yields the same index, so reloading cannot reroll the
// puzzle. n <= 0 yields 0.
func SelectIndex(date, sessionID string, n int) int {
	if n <= 0 {
		return 0
	}
	h := int64(Hash(date + sessionID))
	if h < 0 {
		h = -h
	}
	return int(h % int64(n))
}
