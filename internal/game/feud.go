// internal/game/feud.go
//
// State machine for the round-based "guess the top answers" game.
//
//   playing ──(3 strikes | board cleared)──► roundOver ──Advance──► playing
//                                                      └─(last q)──► sessionComplete
//
// Score only grows from answers the player revealed; answers shown because the
// round was struck out are worth nothing.

package game

import (
	"fmt"
	"sort"
	"strings"
)

// FeudAnswer is one ranked answer on the board. Rank is 1-based.
type FeudAnswer struct {
	Text   string `json:"text" yaml:"text"`
	Rank   int    `json:"rank" yaml:"-"`
	Points int    `json:"points" yaml:"points"`
}

// FeudQuestion is static content; one is played per round.
type FeudQuestion struct {
	Prompt  string       `json:"prompt" yaml:"prompt"`
	Answers []FeudAnswer `json:"answers" yaml:"answers"`
}

// Outcome describes what a feud guess did.
type Outcome string

const (
	OutcomeRevealed Outcome = "revealed"
	OutcomeStrike   Outcome = "strike"
)

// FeudResult is returned from a successful Guess.
type FeudResult struct {
	Outcome Outcome
	Answer  int // index of the revealed answer, -1 on a strike
	Points  int
}

// FeudSnapshot is the persistable state of a feud session.
type FeudSnapshot struct {
	QuestionIndex int       `json:"questionIndex"`
	Revealed      []int     `json:"revealed"`
	Strikes       int       `json:"strikes"`
	Score         int       `json:"score"`
	Phase         FeudPhase `json:"phase"`
}

// FeudRound tracks one player's feud session across its questions.
type FeudRound struct {
	questions []FeudQuestion
	index     int
	revealed  map[int]bool
	strikes   int
	score     int
	phase     FeudPhase
}

// NewFeudRound starts a session over questions, played in order.
func NewFeudRound(questions []FeudQuestion) (*FeudRound, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidState)
	}
	for i, q := range questions {
		if len(q.Answers) == 0 {
			return nil, fmt.Errorf("%w: question %d has no answers", ErrInvalidState, i)
		}
	}
	return &FeudRound{
		questions: questions,
		revealed:  make(map[int]bool),
		phase:     FeudPlaying,
	}, nil
}

// RestoreFeudRound rebuilds a session from a snapshot, checking its invariants.
func RestoreFeudRound(questions []FeudQuestion, s FeudSnapshot) (*FeudRound, error) {
	f, err := NewFeudRound(questions)
	if err != nil {
		return nil, err
	}
	if s.QuestionIndex < 0 || s.QuestionIndex >= len(questions) {
		return nil, fmt.Errorf("%w: question index %d", ErrInvalidState, s.QuestionIndex)
	}
	if s.Strikes < 0 || s.Strikes > MaxStrikes || s.Score < 0 {
		return nil, fmt.Errorf("%w: strikes %d score %d", ErrInvalidState, s.Strikes, s.Score)
	}
	f.index, f.strikes, f.score = s.QuestionIndex, s.Strikes, s.Score
	n := len(questions[f.index].Answers)
	for _, i := range s.Revealed {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("%w: revealed index %d", ErrInvalidState, i)
		}
		f.revealed[i] = true
	}

	switch s.Phase {
	case FeudPlaying:
		if f.strikes == MaxStrikes || len(f.revealed) == n {
			return nil, fmt.Errorf("%w: playing with a finished board", ErrInvalidState)
		}
	case FeudRoundOver, FeudSessionComplete:
		if f.strikes < MaxStrikes && len(f.revealed) < n {
			return nil, fmt.Errorf("%w: %s with an open board", ErrInvalidState, s.Phase)
		}
		if s.Phase == FeudSessionComplete && f.index != len(questions)-1 {
			return nil, fmt.Errorf("%w: session complete before last question", ErrInvalidState)
		}
	default:
		return nil, fmt.Errorf("%w: phase %q", ErrInvalidState, s.Phase)
	}
	f.phase = s.Phase
	return f, nil
}

// Guess applies one answer attempt.
//
// Input is trimmed and case-folded. Empty input and answers already on the board
// are rejected without a strike. A miss adds a strike; the third strike reveals
// the rest of the board and ends the round.
func (f *FeudRound) Guess(input string) (FeudResult, error) {
	if f.phase != FeudPlaying {
		return FeudResult{}, ErrRoundNotActive
	}
	text := NormalizeAnswer(input)
	if text == "" {
		return FeudResult{}, ErrEmptyAnswer
	}

	q := f.questions[f.index]
	for i, a := range q.Answers {
		if NormalizeAnswer(a.Text) != text {
			continue
		}
		if f.revealed[i] {
			return FeudResult{}, ErrDuplicateAnswer
		}
		f.revealed[i] = true
		f.score += a.Points
		if len(f.revealed) == len(q.Answers) {
			f.phase = FeudRoundOver
		}
		return FeudResult{Outcome: OutcomeRevealed, Answer: i, Points: a.Points}, nil
	}

	f.strikes++
	if f.strikes >= MaxStrikes {
		for i := range q.Answers {
			f.revealed[i] = true
		}
		f.phase = FeudRoundOver
	}
	return FeudResult{Outcome: OutcomeStrike, Answer: -1}, nil
}

// Advance moves past a finished round: to the next question, or to
// sessionComplete after the last one.
func (f *FeudRound) Advance() error {
	if f.phase != FeudRoundOver {
		return ErrRoundNotOver
	}
	if f.index+1 >= len(f.questions) {
		f.phase = FeudSessionComplete
		return nil
	}
	f.index++
	f.strikes = 0
	f.revealed = make(map[int]bool)
	f.phase = FeudPlaying
	return nil
}

// Snapshot captures the state for persistence.
func (f *FeudRound) Snapshot() FeudSnapshot {
	return FeudSnapshot{
		QuestionIndex: f.index,
		Revealed:      f.Revealed(),
		Strikes:       f.strikes,
		Score:         f.score,
		Phase:         f.phase,
	}
}

// Question is the question of the current round.
func (f *FeudRound) Question() FeudQuestion { return f.questions[f.index] }

// QuestionIndex is the 0-based round number.
func (f *FeudRound) QuestionIndex() int { return f.index }

// Rounds is the number of questions in the session.
func (f *FeudRound) Rounds() int { return len(f.questions) }

// Revealed returns the revealed answer indices in ascending order.
func (f *FeudRound) Revealed() []int {
	out := make([]int, 0, len(f.revealed))
	for i := range f.revealed {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// IsRevealed reports whether answer i is on the board.
func (f *FeudRound) IsRevealed(i int) bool { return f.revealed[i] }

func (f *FeudRound) Strikes() int     { return f.strikes }
func (f *FeudRound) Score() int       { return f.score }
func (f *FeudRound) Phase() FeudPhase { return f.phase }

// NormalizeAnswer is the matching form of a feud answer or guess: whitespace
// collapsed, lowercased.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
