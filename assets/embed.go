// Package assets embeds the static game content and SQL migrations.
package assets

import (
	"bufio"
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/game"
)

//go:embed answers.txt questions.yaml
var FS embed.FS

// Migrations holds sql/*.sql, applied in lexical order.
//
//go:embed sql/*.sql
var Migrations embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToUpper(s))
	}
	return out, sc.Err()
}

// AnswersList returns the curated solution words, uppercased.
func AnswersList() ([]string, error) {
	return readLines("answers.txt")
}

// Questions parses the feud question bank. Answers keep file order, which is
// their rank.
func Questions() ([]game.FeudQuestion, error) {
	b, err := FS.ReadFile("questions.yaml")
	if err != nil {
		return nil, err
	}
	return ParseQuestions(b)
}

// ParseQuestions decodes a YAML question bank.
func ParseQuestions(b []byte) ([]game.FeudQuestion, error) {
	var doc struct {
		Questions []game.FeudQuestion `yaml:"questions"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("questions: %w", err)
	}
	for i := range doc.Questions {
		q := &doc.Questions[i]
		if strings.TrimSpace(q.Prompt) == "" || len(q.Answers) == 0 {
			return nil, fmt.Errorf("questions: entry %d needs a prompt and answers", i)
		}
		seen := make(map[string]bool, len(q.Answers))
		for j := range q.Answers {
			key := game.NormalizeAnswer(q.Answers[j].Text)
			if key == "" {
				return nil, fmt.Errorf("questions: entry %d answer %d is empty", i, j+1)
			}
			if seen[key] {
				return nil, fmt.Errorf("questions: entry %d repeats answer %q", i, q.Answers[j].Text)
			}
			seen[key] = true
			q.Answers[j].Rank = j + 1
		}
	}
	return doc.Questions, nil
}
