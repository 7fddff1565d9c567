package arcade

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/device"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/game"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/kv"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/reward"
)

// gatedStore, once armed, holds each Get until a second Get is in flight or
// the wait runs out. Unserialised callers therefore read the same state.
type gatedStore struct {
	*kv.Memory

	mu      sync.Mutex
	wait    time.Duration
	readers int
	pair    chan struct{}
}

func (s *gatedStore) arm(wait time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wait, s.readers, s.pair = wait, 0, make(chan struct{})
}

func (s *gatedStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	pair, wait := s.pair, s.wait
	if pair != nil {
		s.readers++
		if s.readers == 2 {
			close(pair)
		}
	}
	s.mu.Unlock()

	if pair != nil {
		select {
		case <-pair:
		case <-time.After(wait):
		}
	}
	return s.Memory.Get(ctx, key)
}

func TestConcurrentWinsIssueOneCode(t *testing.T) {
	mem := kv.NewMemory()
	gs := &gatedStore{Memory: mem}
	f := newFixtureOn(t, gs, mem)
	_, err := f.arcade.Word(context.Background(), sid)
	require.NoError(t, err)
	gs.arm(300 * time.Millisecond)

	// Different random bytes per request, so two issued codes would differ.
	fills := []byte{0, 1}
	views := make([]WordView, len(fills))
	errs := make([]error, len(fills))
	var wg sync.WaitGroup
	for i, b := range fills {
		wg.Add(1)
		go func(i int, b byte) {
			defer wg.Done()
			rec := device.NewRecorder(bytes.NewReader(bytes.Repeat([]byte{b}, 256)))
			views[i], errs[i] = f.arcade.SubmitWord(device.WithContext(context.Background(), rec), sid, "LATTE")
		}(i, b)
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		if err == nil {
			require.Equal(t, -1, winner, "both submits won")
			winner = i
			continue
		}
		assert.ErrorIs(t, err, game.ErrRoundOver)
	}
	require.NotEqual(t, -1, winner)

	code := views[winner].CouponCode
	require.Len(t, f.ledger.issued, 1)
	assert.Equal(t, code, f.ledger.issued[0].Code)
	assert.Equal(t, code, views[1-winner].CouponCode)

	stored, err := f.arcade.Word(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, code, stored.CouponCode)
	assert.Len(t, stored.Rows, 1)
	assert.Zero(t, f.arcade.sessions.len())
}

func TestConcurrentFeudMissesEachCount(t *testing.T) {
	mem := kv.NewMemory()
	gs := &gatedStore{Memory: mem}
	f := newFixtureOn(t, gs, mem)
	_, err := f.arcade.Feud(context.Background(), sid)
	require.NoError(t, err)
	gs.arm(300 * time.Millisecond)

	var wg sync.WaitGroup
	for _, guess := range []string{"gravel", "anchor"} {
		wg.Add(1)
		go func(guess string) {
			defer wg.Done()
			ctx, _ := request()
			_, err := f.arcade.GuessFeud(ctx, sid, guess)
			assert.NoError(t, err)
		}(guess)
	}
	wg.Wait()

	v, err := f.arcade.Feud(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Strikes)
}

func TestWordWinKeepsCodeAlreadyInLedger(t *testing.T) {
	f := newFixture(t)
	ctx, _ := request()
	inserted, err := f.ledger.Record(ctx, reward.Issued{Code: "WTZZZZZZ", SessionID: sid, Date: "2026-10-18"})
	require.NoError(t, err)
	require.True(t, inserted)

	v, err := f.arcade.SubmitWord(ctx, sid, "LATTE")
	require.NoError(t, err)
	assert.Equal(t, game.WordWon, v.GameState)
	assert.Equal(t, "WTZZZZZZ", v.CouponCode)

	again, err := f.arcade.Word(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, "WTZZZZZZ", again.CouponCode)
	assert.Len(t, f.ledger.issued, 1)
}

func TestSessionLocksSerialiseAndRelease(t *testing.T) {
	var l sessionLocks
	var wg sync.WaitGroup
	n := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer l.lock("s")()
			n++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, n)
	assert.Zero(t, l.len())

	unlockA := l.lock("a")
	unlockB := l.lock("b") // other sessions are not blocked
	assert.Equal(t, 2, l.len())
	unlockA()
	unlockB()
	assert.Zero(t, l.len())
}
