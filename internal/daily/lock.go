// internal/daily/lock.go
//
// Daily lock over a kv.Store.
//
//   - Load restores a record only if it was written on today's date; a record
//     from any other day is removed and reported as absent, so the caller starts
//     fresh.
//   - Save stamps today's date and writes through immediately.
//   - Terminal records are restored as-is, which is what blocks replaying a
//     finished game (and re-earning its reward) on the same day.

package daily

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/kv"
)

// KeyPrefix namespaces every record written by the games.
const KeyPrefix = "cafe-games:"

// Record is a persisted game state carrying its calendar date.
type Record interface {
	RecordDate() string
	SetRecordDate(string)
}

// Lock applies the date policy on top of a Store.
type Lock struct {
	store kv.Store
	now   func() time.Time
	loc   *time.Location
}

// NewLock builds a Lock. now defaults to time.Now and loc to time.Local.
func NewLock(store kv.Store, now func() time.Time, loc *time.Location) *Lock {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Lock{store: store, now: now, loc: loc}
}

// Key builds the namespaced key for a game and session.
func Key(game, sessionID string) string {
	return KeyPrefix + game + ":" + sessionID
}

// Today is the current date key.
func (l *Lock) Today() string { return DateKey(l.now(), l.loc) }

// Load decodes today's record for key into rec. It reports false when there is
// no record for today. Unreadable records are discarded like stale ones.
func (l *Lock) Load(ctx context.Context, key string, rec Record) (bool, error) {
	b, err := l.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(b, rec); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding unreadable record")
		return false, l.store.Remove(ctx, key)
	}
	if rec.RecordDate() != l.Today() {
		log.Debug().Str("key", key).Str("date", rec.RecordDate()).Msg("discarding stale record")
		return false, l.store.Remove(ctx, key)
	}
	return true, nil
}

// Save writes rec for key, dated today.
func (l *Lock) Save(ctx context.Context, key string, rec Record) error {
	rec.SetRecordDate(l.Today())
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return l.store.Set(ctx, key, b)
}

// PurgeStale removes every record under prefix that is not dated today. It
// returns the number of records removed. Stores without key listing are skipped.
func (l *Lock) PurgeStale(ctx context.Context, prefix string) (int, error) {
	sc, ok := l.store.(kv.Scanner)
	if !ok {
		return 0, nil
	}
	keys, err := sc.Keys(ctx, prefix)
	if err != nil {
		return 0, err
	}
	today := l.Today()
	removed := 0
	for _, k := range keys {
		b, err := l.store.Get(ctx, k)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, err
		}
		var d struct {
			Date string `json:"date"`
		}
		if json.Unmarshal(b, &d) == nil && d.Date == today {
			continue
		}
		if err := l.store.Remove(ctx, k); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Dated is embedded by records to satisfy Record.
type Dated struct {
	Date string `json:"date"`
}

func (d *Dated) RecordDate() string     { return d.Date }
func (d *Dated) SetRecordDate(s string) { d.Date = s }
