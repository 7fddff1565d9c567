// internal/words/words.go
//
// Provides the solution word list for the daily word puzzle.
//
// Responsibilities:
//   - Load answers from an environment-provided file or fall back to the
//     embedded curated list (assets/answers.txt).
//
// Constraints:
//   • Words must be 5 alphabetic letters (A–Z).
//   • Lists are normalized to uppercase; duplicates are dropped, first wins.
//
// Environment variables:
//   WORDS_ANSWERS_FILE=/path/to/answers.txt

package words

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/assets"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/game"
)

var ErrEmpty = errors.New("words: answers list is empty")

// List is an immutable, ordered answer list.
type List struct {
	answers []string
}

// Load reads answers from path, or from the embedded list when path is empty.
func Load(path string) (*List, error) {
	var raw []string
	var err error
	if path != "" {
		raw, err = readWordFile(path)
	} else {
		raw, err = assets.AnswersList()
	}
	if err != nil {
		return nil, err
	}
	return New(raw)
}

// New builds a List from raw words, keeping only valid ones.
func New(raw []string) (*List, error) {
	l := &List{}
	seen := make(map[string]struct{}, len(raw))
	for _, w := range raw {
		w = strings.ToUpper(strings.TrimSpace(w))
		if len(w) != game.WordLength || !isAlpha(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		l.answers = append(l.answers, w)
	}
	if len(l.answers) == 0 {
		return nil, ErrEmpty
	}
	return l, nil
}

// readWordFile loads one word per line from a file, skipping blanks and # comments.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		out = append(out, w)
	}
	return out, sc.Err()
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Len is the number of answers.
func (l *List) Len() int { return len(l.answers) }

// At returns the i-th answer.
func (l *List) At(i int) string { return l.answers[i] }
