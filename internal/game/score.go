// internal/game/score.go
//
// Guess evaluation and keyboard aggregation.

package game

import "strings"

// Evaluate implements the standard two-pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as Correct.
//   - Count remaining (non-correct) solution letters.
//
// Pass 2:
//   - For each non-correct guess letter: if there is remaining count for that letter,
//     mark Present and decrement the count; otherwise mark Absent.
//
// A repeated guess letter is therefore never credited more often than it occurs in
// the solution. Inputs are compared case-insensitively. If the lengths differ every
// position is Absent.
func Evaluate(guess, solution string) []Verdict {
	g := []rune(strings.ToUpper(guess))
	s := []rune(strings.ToUpper(solution))
	out := make([]Verdict, len(g))
	for i := range out {
		out[i] = Absent
	}
	if len(g) != len(s) {
		return out
	}

	remaining := make(map[rune]int, len(s))
	for i := range g {
		if g[i] == s[i] {
			out[i] = Correct
		} else {
			remaining[s[i]]++
		}
	}

	for i := range g {
		if out[i] == Correct {
			continue
		}
		if remaining[g[i]] > 0 {
			out[i] = Present
			remaining[g[i]]--
		}
	}
	return out
}

// StatusFor returns the best verdict seen for letter across every guess.
// Precedence is correct > present > absent > unused.
func StatusFor(letter rune, guesses []string, solution string) Verdict {
	letter = toUpper(letter)
	best := Unused
	for _, g := range guesses {
		word := []rune(strings.ToUpper(g))
		v := Evaluate(g, solution)
		for i, r := range word {
			if r == letter && v[i] > best {
				best = v[i]
			}
		}
	}
	return best
}

// Keyboard folds already-scored rows into the best verdict per letter.
// Letters that never appeared are omitted (Unused).
func Keyboard(rows []GuessRow) map[string]Verdict {
	out := make(map[string]Verdict)
	for _, row := range rows {
		for i, r := range row.Word {
			if i >= len(row.Verdicts) {
				break
			}
			k := string(r)
			if row.Verdicts[i] > out[k] {
				out[k] = row.Verdicts[i]
			}
		}
	}
	return out
}

// allCorrect reports true if every verdict is Correct.
func allCorrect(v []Verdict) bool {
	for _, x := range v {
		if x != Correct {
			return false
		}
	}
	return len(v) > 0
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}
