package arcade

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/daily"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/device"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/game"
)

// Persisted feud status values.
const (
	statusPlaying      = "playing"
	statusRoundOver    = "roundOver"
	statusGameComplete = "gameComplete"
)

// feudRecord is the persisted feud session:
//
//	{"date":"2026-10-18","score":70,"gameStatus":"playing","questionIndex":1,"revealed":[0],"strikes":2}
type feudRecord struct {
	daily.Dated
	Score         int    `json:"score"`
	GameStatus    string `json:"gameStatus"`
	QuestionIndex int    `json:"questionIndex"`
	Revealed      []int  `json:"revealed"`
	Strikes       int    `json:"strikes"`
}

func statusOf(p game.FeudPhase) string {
	switch p {
	case game.FeudRoundOver:
		return statusRoundOver
	case game.FeudSessionComplete:
		return statusGameComplete
	}
	return statusPlaying
}

func phaseOf(status string) (game.FeudPhase, error) {
	switch status {
	case statusPlaying:
		return game.FeudPlaying, nil
	case statusRoundOver:
		return game.FeudRoundOver, nil
	case statusGameComplete:
		return game.FeudSessionComplete, nil
	}
	return "", fmt.Errorf("%w: game status %q", game.ErrInvalidState, status)
}

// BoardSlot is one answer position. Text and Points stay empty until revealed.
type BoardSlot struct {
	Rank     int    `json:"rank"`
	Text     string `json:"text,omitempty"`
	Points   int    `json:"points,omitempty"`
	Revealed bool   `json:"revealed"`
}

// FeudView is what the client renders.
type FeudView struct {
	Date       string      `json:"date"`
	Prompt     string      `json:"prompt"`
	Round      int         `json:"round"`
	Rounds     int         `json:"rounds"`
	Board      []BoardSlot `json:"board"`
	Strikes    int         `json:"strikes"`
	MaxStrikes int         `json:"maxStrikes"`
	Score      int         `json:"score"`
	GameStatus string      `json:"gameStatus"`
	Message    string      `json:"message,omitempty"`
	Persistent bool        `json:"persistent"`
}

// Feud returns today's feud session for sid, creating it on first play.
func (a *Arcade) Feud(ctx context.Context, sid string) (FeudView, error) {
	if err := checkSession(sid); err != nil {
		return FeudView{}, err
	}
	defer a.sessions.lock(sid)()
	f, persisted, err := a.openFeud(ctx, sid)
	if err != nil {
		return FeudView{}, err
	}
	return feudView(a.lock.Today(), f, persisted, ""), nil
}

// GuessFeud applies an answer attempt. game.ErrDuplicateAnswer,
// game.ErrEmptyAnswer and game.ErrRoundNotActive come back with the
// unchanged view.
func (a *Arcade) GuessFeud(ctx context.Context, sid, answer string) (FeudView, error) {
	if err := checkSession(sid); err != nil {
		return FeudView{}, err
	}
	defer a.sessions.lock(sid)()
	f, persisted, err := a.openFeud(ctx, sid)
	if err != nil {
		return FeudView{}, err
	}
	c := caps(ctx)
	today := a.lock.Today()

	res, err := f.Guess(answer)
	if err != nil {
		msg := ""
		switch {
		case errors.Is(err, game.ErrDuplicateAnswer):
			a.metrics.Rejected(gameFeud, "duplicate_answer")
			msg = "Already guessed"
		case errors.Is(err, game.ErrEmptyAnswer):
			a.metrics.Rejected(gameFeud, "empty_answer")
			device.Play(c, device.ToneInvalid)
		case errors.Is(err, game.ErrRoundNotActive):
			a.metrics.Rejected(gameFeud, "round_over")
		default:
			return FeudView{}, err
		}
		return feudView(today, f, persisted, msg), err
	}

	persisted = a.saveFeud(ctx, sid, f)

	var msg string
	switch res.Outcome {
	case game.OutcomeRevealed:
		a.metrics.Guess(gameFeud, "revealed")
		msg = fmt.Sprintf("%s! +%d", f.Question().Answers[res.Answer].Text, res.Points)
		device.Play(c, device.ToneCorrect)
	case game.OutcomeStrike:
		a.metrics.Guess(gameFeud, "strike")
		msg = fmt.Sprintf("Strike %d!", f.Strikes())
		device.Play(c, device.ToneMiss)
	}
	if f.Phase() == game.FeudRoundOver {
		a.metrics.Finished(gameFeud, statusRoundOver)
		if f.Strikes() == game.MaxStrikes {
			msg = "Three strikes! Round over"
			device.Play(c, device.ToneLose)
		} else {
			msg = "Board cleared!"
			device.Play(c, device.ToneWin)
		}
	}
	return feudView(today, f, persisted, msg), nil
}

// AdvanceFeud moves a finished round on to the next question, or completes
// the session after the last one. game.ErrRoundNotOver comes back with the
// unchanged view.
func (a *Arcade) AdvanceFeud(ctx context.Context, sid string) (FeudView, error) {
	if err := checkSession(sid); err != nil {
		return FeudView{}, err
	}
	defer a.sessions.lock(sid)()
	f, persisted, err := a.openFeud(ctx, sid)
	if err != nil {
		return FeudView{}, err
	}
	today := a.lock.Today()

	if err := f.Advance(); err != nil {
		a.metrics.Rejected(gameFeud, "round_not_over")
		return feudView(today, f, persisted, ""), err
	}
	persisted = a.saveFeud(ctx, sid, f)

	msg := ""
	if f.Phase() == game.FeudSessionComplete {
		a.metrics.Finished(gameFeud, statusGameComplete)
		msg = fmt.Sprintf("Game complete! Final score %d", f.Score())
	}
	return feudView(today, f, persisted, msg), nil
}

// sessionQuestions picks today's questions for sid: a deterministic start in
// the bank, then consecutive questions, wrapping.
func (a *Arcade) sessionQuestions(today, sid string) []game.FeudQuestion {
	n := len(a.questions)
	start := daily.SelectIndex(today, sid+":"+gameFeud, n)
	qs := make([]game.FeudQuestion, a.rounds)
	for i := range qs {
		qs[i] = a.questions[(start+i)%n]
	}
	return qs
}

func (a *Arcade) openFeud(ctx context.Context, sid string) (*game.FeudRound, bool, error) {
	key := daily.Key(gameFeud, sid)
	qs := a.sessionQuestions(a.lock.Today(), sid)

	var rec feudRecord
	if a.load(ctx, key, &rec) {
		f, err := restoreFeud(qs, rec)
		if err == nil {
			return f, a.persistent(), nil
		}
		log.Warn().Err(err).Str("key", key).Msg("discarding inconsistent feud record")
	}

	f, err := game.NewFeudRound(qs)
	if err != nil {
		return nil, false, err
	}
	return f, a.saveFeud(ctx, sid, f), nil
}

func restoreFeud(qs []game.FeudQuestion, rec feudRecord) (*game.FeudRound, error) {
	phase, err := phaseOf(rec.GameStatus)
	if err != nil {
		return nil, err
	}
	return game.RestoreFeudRound(qs, game.FeudSnapshot{
		QuestionIndex: rec.QuestionIndex,
		Revealed:      rec.Revealed,
		Strikes:       rec.Strikes,
		Score:         rec.Score,
		Phase:         phase,
	})
}

func (a *Arcade) saveFeud(ctx context.Context, sid string, f *game.FeudRound) bool {
	s := f.Snapshot()
	return a.save(ctx, daily.Key(gameFeud, sid), &feudRecord{
		Score:         s.Score,
		GameStatus:    statusOf(s.Phase),
		QuestionIndex: s.QuestionIndex,
		Revealed:      s.Revealed,
		Strikes:       s.Strikes,
	})
}

func feudView(today string, f *game.FeudRound, persisted bool, msg string) FeudView {
	q := f.Question()
	board := make([]BoardSlot, len(q.Answers))
	for i, ans := range q.Answers {
		board[i] = BoardSlot{Rank: ans.Rank}
		if f.IsRevealed(i) {
			board[i].Text = ans.Text
			board[i].Points = ans.Points
			board[i].Revealed = true
		}
	}
	return FeudView{
		Date:       today,
		Prompt:     q.Prompt,
		Round:      f.QuestionIndex() + 1,
		Rounds:     f.Rounds(),
		Board:      board,
		Strikes:    f.Strikes(),
		MaxStrikes: game.MaxStrikes,
		Score:      f.Score(),
		GameStatus: statusOf(f.Phase()),
		Message:    msg,
		Persistent: persisted,
	}
}
