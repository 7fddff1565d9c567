// Package reward generates coupon codes granted for a won daily puzzle.
//
// Codes are a fixed tag followed by symbols from an alphabet without the
// look-alikes 0/O and 1/I, so they can be read off a phone and typed at the till.
package reward

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/device"
)

// Alphabet has exactly 32 symbols: a random byte masked to 5 bits maps onto it
// without bias.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	// CodeLength is the full code length including the tag.
	CodeLength = 8
	// DefaultTag prefixes every code unless configured otherwise.
	DefaultTag = "WT"
	tagLength  = 2
)

var ErrBadTag = errors.New("reward: tag must be 2 characters from the code alphabet")

// Generator issues codes from a secure random source.
type Generator struct {
	tag  string
	caps device.Capabilities
}

// NewGenerator validates tag (empty means DefaultTag).
func NewGenerator(tag string, caps device.Capabilities) (*Generator, error) {
	if tag == "" {
		tag = DefaultTag
	}
	tag = strings.ToUpper(tag)
	if len(tag) != tagLength || !Valid(tag+strings.Repeat("A", CodeLength-tagLength), tag) {
		return nil, ErrBadTag
	}
	if caps == nil {
		caps = device.System{}
	}
	return &Generator{tag: tag, caps: caps}, nil
}

// Generate returns a new code.
func (g *Generator) Generate() (string, error) {
	b, err := g.caps.SecureRandomBytes(CodeLength - tagLength)
	if err != nil {
		return "", fmt.Errorf("reward: %w", err)
	}
	var sb strings.Builder
	sb.Grow(CodeLength)
	sb.WriteString(g.tag)
	for _, x := range b {
		sb.WriteByte(Alphabet[x&31])
	}
	return sb.String(), nil
}

// Valid reports whether code has the right length, tag and alphabet.
func Valid(code, tag string) bool {
	if len(code) != CodeLength || !strings.HasPrefix(code, tag) {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}
