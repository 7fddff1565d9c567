// internal/game/engine.go
//
// State machine for the daily word round.
// Responsibilities:
//   - Validate and apply guesses (exactly five letters A–Z).
//   - Score each guess once at submit time and keep the row alongside the word.
//   - Track state transitions: playing → won/lost. Terminal phases are frozen.
//   - Call the reward issuer exactly once, on the winning guess.

package game

import (
	"fmt"
	"strings"
)

// GuessRow is a submitted guess together with its verdicts.
type GuessRow struct {
	Word     string    `json:"word"`
	Verdicts []Verdict `json:"verdicts"`
}

// CodeIssuer produces a reward code for a won round.
type CodeIssuer func() (string, error)

// WordRound holds the state of one player's word puzzle for the day.
type WordRound struct {
	solution string
	rows     []GuessRow
	phase    WordPhase
	code     string
	issue    CodeIssuer
}

// NewWordRound starts a fresh round for solution.
func NewWordRound(solution string, issue CodeIssuer) *WordRound {
	return &WordRound{
		solution: strings.ToUpper(solution),
		phase:    WordPlaying,
		issue:    issue,
	}
}

// RestoreWordRound rebuilds a round from persisted guesses. Verdict rows are
// recomputed; Evaluate is pure so they match the rows produced at submit time.
// The stored phase and code must agree with the guesses.
func RestoreWordRound(solution string, guesses []string, phase WordPhase, code string, issue CodeIssuer) (*WordRound, error) {
	w := NewWordRound(solution, issue)
	if len(w.solution) != WordLength || !isLetters(w.solution) {
		return nil, fmt.Errorf("%w: solution %q", ErrInvalidState, solution)
	}
	if len(guesses) > MaxGuesses {
		return nil, fmt.Errorf("%w: %d guesses", ErrInvalidState, len(guesses))
	}
	won := false
	for i, g := range guesses {
		g = strings.ToUpper(g)
		if len(g) != WordLength || !isLetters(g) {
			return nil, fmt.Errorf("%w: guess %q", ErrInvalidState, g)
		}
		if won {
			return nil, fmt.Errorf("%w: guess %d after win", ErrInvalidState, i+1)
		}
		row := GuessRow{Word: g, Verdicts: Evaluate(g, w.solution)}
		w.rows = append(w.rows, row)
		won = g == w.solution
	}

	want := WordPlaying
	switch {
	case won:
		want = WordWon
	case len(w.rows) == MaxGuesses:
		want = WordLost
	}
	if phase != want {
		return nil, fmt.Errorf("%w: phase %q, guesses imply %q", ErrInvalidState, phase, want)
	}
	if (want == WordWon) != (code != "") {
		return nil, fmt.Errorf("%w: reward code does not match phase %q", ErrInvalidState, want)
	}
	w.phase, w.code = want, code
	return w, nil
}

// Submit validates and scores a guess, mutating the round.
// Returns the stored row or an error; on error the round is unchanged.
//
// State transitions:
//   - Guess equals solution → won, reward code issued.
//   - Otherwise, sixth guess → lost.
func (w *WordRound) Submit(input string) (GuessRow, error) {
	if w.phase != WordPlaying {
		return GuessRow{}, ErrRoundOver
	}
	guess := strings.ToUpper(strings.TrimSpace(input))
	if len(guess) != WordLength || !isLetters(guess) {
		return GuessRow{}, ErrInvalidGuessLength
	}

	row := GuessRow{Word: guess, Verdicts: Evaluate(guess, w.solution)}
	won := allCorrect(row.Verdicts)

	var code string
	if won {
		if w.issue == nil {
			return GuessRow{}, fmt.Errorf("%w: no reward issuer", ErrInvalidState)
		}
		c, err := w.issue()
		if err != nil {
			return GuessRow{}, fmt.Errorf("issue reward: %w", err)
		}
		code = c
	}

	w.rows = append(w.rows, row)
	switch {
	case won:
		w.phase, w.code = WordWon, code
	case len(w.rows) >= MaxGuesses:
		w.phase = WordLost
	}
	return row, nil
}

// Phase reports the current phase.
func (w *WordRound) Phase() WordPhase { return w.phase }

// Solution returns the answer word. Callers decide when to reveal it.
func (w *WordRound) Solution() string { return w.solution }

// RewardCode is set only once the round is won.
func (w *WordRound) RewardCode() string { return w.code }

// Rows returns a copy of the scored guesses in submit order.
func (w *WordRound) Rows() []GuessRow {
	return append([]GuessRow(nil), w.rows...)
}

// Guesses returns the submitted words in order.
func (w *WordRound) Guesses() []string {
	out := make([]string, len(w.rows))
	for i, r := range w.rows {
		out[i] = r.Word
	}
	return out
}

// Remaining is the number of guesses still available.
func (w *WordRound) Remaining() int {
	if w.phase != WordPlaying {
		return 0
	}
	return MaxGuesses - len(w.rows)
}

// isLetters checks that a string consists only of uppercase A–Z.
func isLetters(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
