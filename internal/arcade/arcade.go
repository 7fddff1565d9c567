// internal/arcade/arcade.go
//
// Service layer for the daily mini-games.
// Each call holds its session's lock and follows the same discipline:
//   - read the session's record for today once (daily.Lock),
//   - restore the round, or create today's round if there is none,
//   - apply one player event,
//   - write the new state through before answering.
//
// Sound cues go to the request's device capabilities and never affect state.

package arcade

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/daily"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/device"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/game"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/metrics"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/reward"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/words"
)

const (
	gameWord = "word"
	gameFeud = "feud"
)

var ErrNoSession = errors.New("arcade: missing session id")

// Ledger records issued reward codes, at most one per session and date.
type Ledger interface {
	// Record reports false when the session already holds a code for r.Date.
	Record(ctx context.Context, r reward.Issued) (bool, error)
	// IssuedFor returns the session's code for date, or reward.ErrUnknownCode.
	IssuedFor(ctx context.Context, sessionID, date string) (reward.Issued, error)
}

// Options configures an Arcade.
type Options struct {
	Words      *words.List
	Questions  []game.FeudQuestion
	Lock       *daily.Lock
	Metrics    *metrics.Collector
	FeudRounds int
	RewardTag  string
	Ledger     Ledger      // optional
	Persistent func() bool // optional; reports whether saves reach durable storage
}

// Arcade serves both games.
type Arcade struct {
	words      *words.List
	questions  []game.FeudQuestion
	lock       *daily.Lock
	metrics    *metrics.Collector
	rounds     int
	rewardTag  string
	ledger     Ledger
	persistent func() bool
	sessions   sessionLocks
}

// New validates o and builds an Arcade.
func New(o Options) (*Arcade, error) {
	if o.Words == nil || o.Words.Len() == 0 {
		return nil, errors.New("arcade: no answer words")
	}
	if _, err := game.NewFeudRound(o.Questions); err != nil {
		return nil, fmt.Errorf("arcade: question bank: %w", err)
	}
	if o.Lock == nil {
		return nil, errors.New("arcade: no daily lock")
	}
	if _, err := reward.NewGenerator(o.RewardTag, nil); err != nil {
		return nil, err
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NewCollector("")
	}
	rounds := o.FeudRounds
	if rounds < 1 {
		rounds = 1
	}
	if rounds > len(o.Questions) {
		rounds = len(o.Questions)
	}
	persistent := o.Persistent
	if persistent == nil {
		persistent = func() bool { return true }
	}
	return &Arcade{
		words:      o.Words,
		questions:  o.Questions,
		lock:       o.Lock,
		metrics:    o.Metrics,
		rounds:     rounds,
		rewardTag:  o.RewardTag,
		ledger:     o.Ledger,
		persistent: persistent,
	}, nil
}

// save writes rec through. Failures are logged, not returned: the round in
// hand is still valid and the player can keep going.
func (a *Arcade) save(ctx context.Context, key string, rec daily.Record) bool {
	if err := a.lock.Save(ctx, key, rec); err != nil {
		log.Error().Err(err).Str("key", key).Msg("save daily record")
		return false
	}
	return a.persistent()
}

// load reads today's record; storage errors are treated as "no record".
func (a *Arcade) load(ctx context.Context, key string, rec daily.Record) bool {
	found, err := a.lock.Load(ctx, key, rec)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("load daily record")
		return false
	}
	return found
}

func checkSession(sid string) error {
	if sid == "" {
		return ErrNoSession
	}
	return nil
}

func caps(ctx context.Context) device.Capabilities { return device.FromContext(ctx) }
