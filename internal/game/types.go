// internal/game/types.go
//
// Core type definitions for the daily mini-games.
// Defines:
//   - Verdict: per-letter result of a word guess (correct/present/absent) plus
//     the keyboard-only "unused" state.
//   - Phase values for the word round and the feud round.
//   - Sentinel errors shared by both state machines.

package game

import (
	"errors"
	"fmt"
)

const (
	// WordLength is the number of letters in every solution and guess.
	WordLength = 5
	// MaxGuesses bounds a word round.
	MaxGuesses = 6
	// MaxStrikes ends a feud round.
	MaxStrikes = 3
)

// Verdict classifies one letter of a guess relative to the solution.
// The numeric order is the keyboard precedence: a higher value always wins.
type Verdict uint8

const (
	Unused Verdict = iota
	Absent
	Present
	Correct
)

var verdictNames = [...]string{"unused", "absent", "present", "correct"}

func (v Verdict) String() string {
	if int(v) < len(verdictNames) {
		return verdictNames[v]
	}
	return fmt.Sprintf("verdict(%d)", uint8(v))
}

// MarshalText renders the verdict as its lowercase name for JSON.
func (v Verdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText parses a verdict name.
func (v *Verdict) UnmarshalText(b []byte) error {
	for i, n := range verdictNames {
		if n == string(b) {
			*v = Verdict(i)
			return nil
		}
	}
	return fmt.Errorf("game: unknown verdict %q", b)
}

// WordPhase is the state of a word round.
type WordPhase string

const (
	WordPlaying WordPhase = "playing"
	WordWon     WordPhase = "won"
	WordLost    WordPhase = "lost"
)

// FeudPhase is the state of a feud session.
type FeudPhase string

const (
	FeudPlaying         FeudPhase = "playing"
	FeudRoundOver       FeudPhase = "roundOver"
	FeudSessionComplete FeudPhase = "sessionComplete"
)

var (
	ErrInvalidGuessLength = errors.New("guess must be exactly 5 letters")
	ErrRoundOver          = errors.New("round is already over")
	ErrEmptyAnswer        = errors.New("answer is empty")
	ErrDuplicateAnswer    = errors.New("already guessed")
	ErrRoundNotActive     = errors.New("round is not accepting guesses")
	ErrRoundNotOver       = errors.New("round is still in progress")
	ErrInvalidState       = errors.New("invalid saved state")
)
