package arcade

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/daily"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/device"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/game"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/reward"
)

// wordRecord is the persisted word game:
//
//	{"date":"2026-10-18","solution":"LATTE","guesses":["ARISE","LATTE"],"gameState":"won","couponCode":"WTAB23CD"}
type wordRecord struct {
	daily.Dated
	Solution   string         `json:"solution"`
	Guesses    []string       `json:"guesses"`
	GameState  game.WordPhase `json:"gameState"`
	CouponCode string         `json:"couponCode,omitempty"`
}

// WordView is what the client renders.
type WordView struct {
	Date        string                  `json:"date"`
	Rows        []game.GuessRow         `json:"rows"`
	Keyboard    map[string]game.Verdict `json:"keyboard"`
	GameState   game.WordPhase          `json:"gameState"`
	GuessesLeft int                     `json:"guessesLeft"`
	CouponCode  string                  `json:"couponCode,omitempty"`
	Solution    string                  `json:"solution,omitempty"` // only once the round is over
	Persistent  bool                    `json:"persistent"`
}

// Word returns today's word round for the session, creating it on first play.
func (a *Arcade) Word(ctx context.Context, sid string) (WordView, error) {
	if err := checkSession(sid); err != nil {
		return WordView{}, err
	}
	defer a.sessions.lock(sid)()
	w, persisted := a.openWord(ctx, sid)
	return a.wordView(w, persisted), nil
}

// SubmitWord applies a guess. Rule violations (game.ErrInvalidGuessLength,
// game.ErrRoundOver) come back with the unchanged view.
func (a *Arcade) SubmitWord(ctx context.Context, sid, guess string) (WordView, error) {
	if err := checkSession(sid); err != nil {
		return WordView{}, err
	}
	defer a.sessions.lock(sid)()
	w, persisted := a.openWord(ctx, sid)
	c := caps(ctx)

	row, err := w.Submit(guess)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrInvalidGuessLength):
			a.metrics.Rejected(gameWord, "invalid_guess_length")
			device.Play(c, device.ToneInvalid)
		case errors.Is(err, game.ErrRoundOver):
			a.metrics.Rejected(gameWord, "round_over")
		default:
			return WordView{}, err
		}
		return a.wordView(w, persisted), err
	}

	fresh := false
	if w.Phase() == game.WordWon {
		w, fresh = a.claimReward(ctx, sid, w)
	}
	persisted = a.saveWord(ctx, sid, w)

	switch w.Phase() {
	case game.WordWon:
		a.metrics.Guess(gameWord, "solved")
		a.metrics.Finished(gameWord, string(game.WordWon))
		if fresh {
			a.metrics.RewardIssued()
		}
		device.Play(c, device.ToneWin)
	case game.WordLost:
		a.metrics.Guess(gameWord, "miss")
		a.metrics.Finished(gameWord, string(game.WordLost))
		device.Play(c, device.ToneLose)
	default:
		a.metrics.Guess(gameWord, "miss")
		if hasCorrect(row.Verdicts) {
			device.Play(c, device.ToneCorrect)
		} else {
			device.Play(c, device.ToneMiss)
		}
	}
	return a.wordView(w, persisted), nil
}

// openWord restores today's round or starts (and saves) a new one.
func (a *Arcade) openWord(ctx context.Context, sid string) (*game.WordRound, bool) {
	key := daily.Key(gameWord, sid)
	issue := a.issuer(ctx)

	var rec wordRecord
	if a.load(ctx, key, &rec) {
		w, err := game.RestoreWordRound(rec.Solution, rec.Guesses, rec.GameState, rec.CouponCode, issue)
		if err == nil {
			return w, a.persistent()
		}
		log.Warn().Err(err).Str("key", key).Msg("discarding inconsistent word record")
	}

	today := a.lock.Today()
	solution := a.words.At(daily.SelectIndex(today, sid, a.words.Len()))
	w := game.NewWordRound(solution, issue)
	return w, a.saveWord(ctx, sid, w)
}

func (a *Arcade) saveWord(ctx context.Context, sid string, w *game.WordRound) bool {
	return a.save(ctx, daily.Key(gameWord, sid), &wordRecord{
		Solution:   w.Solution(),
		Guesses:    w.Guesses(),
		GameState:  w.Phase(),
		CouponCode: w.RewardCode(),
	})
}

func (a *Arcade) issuer(ctx context.Context) game.CodeIssuer {
	return func() (string, error) {
		g, err := reward.NewGenerator(a.rewardTag, caps(ctx))
		if err != nil {
			return "", err
		}
		return g.Generate()
	}
}

// claimReward records w's code. When the ledger already holds a code for the
// session today, the round is rebuilt around that code instead. fresh is false
// in that case.
func (a *Arcade) claimReward(ctx context.Context, sid string, w *game.WordRound) (_ *game.WordRound, fresh bool) {
	if a.ledger == nil {
		return w, true
	}
	today := a.lock.Today()
	inserted, err := a.ledger.Record(ctx, reward.Issued{Code: w.RewardCode(), SessionID: sid, Date: today})
	if err != nil {
		log.Warn().Err(err).Msg("record reward code")
		return w, true
	}
	if inserted {
		return w, true
	}
	prev, err := a.ledger.IssuedFor(ctx, sid, today)
	if err != nil {
		log.Warn().Err(err).Msg("look up existing reward code")
		return w, false
	}
	if prev.Code == w.RewardCode() {
		return w, false
	}
	kept, err := game.RestoreWordRound(w.Solution(), w.Guesses(), game.WordWon, prev.Code, a.issuer(ctx))
	if err != nil {
		log.Warn().Err(err).Msg("reuse existing reward code")
		return w, false
	}
	log.Info().Str("date", today).Msg("reusing reward code already issued today")
	return kept, false
}

func (a *Arcade) wordView(w *game.WordRound, persisted bool) WordView {
	rows := w.Rows()
	v := WordView{
		Date:        a.lock.Today(),
		Rows:        rows,
		Keyboard:    game.Keyboard(rows),
		GameState:   w.Phase(),
		GuessesLeft: w.Remaining(),
		CouponCode:  w.RewardCode(),
		Persistent:  persisted,
	}
	if w.Phase() != game.WordPlaying {
		v.Solution = w.Solution()
	}
	return v
}

func hasCorrect(v []game.Verdict) bool {
	for _, x := range v {
		if x == game.Correct {
			return true
		}
	}
	return false
}
