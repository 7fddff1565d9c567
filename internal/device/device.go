// Package device abstracts the platform capabilities the games need: secure
// random bytes and audible feedback. Game logic depends only on Capabilities so
// it can run (and be tested) without a browser or sound card.
package device

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"
)

// Capabilities is implemented per platform.
//
// PlayTone must not block: feedback is fire-and-forget and never gates a state
// transition.
type Capabilities interface {
	SecureRandomBytes(n int) ([]byte, error)
	PlayTone(freqHz float64, d time.Duration)
}

// Tone is a single beep to be played by the client.
type Tone struct {
	FreqHz     float64 `json:"freq"`
	DurationMs int64   `json:"durationMs"`
}

// Feedback tones used by the games.
var (
	ToneCorrect = Tone{FreqHz: 880, DurationMs: 120}
	ToneMiss    = Tone{FreqHz: 220, DurationMs: 200}
	ToneInvalid = Tone{FreqHz: 160, DurationMs: 90}
	ToneWin     = Tone{FreqHz: 1320, DurationMs: 400}
	ToneLose    = Tone{FreqHz: 110, DurationMs: 500}
)

// Play sends t to c.
func Play(c Capabilities, t Tone) {
	c.PlayTone(t.FreqHz, time.Duration(t.DurationMs)*time.Millisecond)
}

// readN draws n bytes from r.
func readN(r io.Reader, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("device: negative length %d", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("device: read random: %w", err)
	}
	return b, nil
}

// System uses crypto/rand and discards tones. It is the process default.
type System struct{}

func (System) SecureRandomBytes(n int) ([]byte, error) { return readN(rand.Reader, n) }
func (System) PlayTone(float64, time.Duration)         {}

// Recorder is a request-scoped capability: tones are collected so the HTTP
// layer can hand them to the browser.
type Recorder struct {
	rand  io.Reader
	mu    sync.Mutex
	tones []Tone
}

// NewRecorder returns a Recorder reading randomness from r, or crypto/rand if r is nil.
func NewRecorder(r io.Reader) *Recorder {
	if r == nil {
		r = rand.Reader
	}
	return &Recorder{rand: r}
}

func (rc *Recorder) SecureRandomBytes(n int) ([]byte, error) { return readN(rc.rand, n) }

func (rc *Recorder) PlayTone(freqHz float64, d time.Duration) {
	rc.mu.Lock()
	rc.tones = append(rc.tones, Tone{FreqHz: freqHz, DurationMs: d.Milliseconds()})
	rc.mu.Unlock()
}

// Tones returns the tones recorded so far.
func (rc *Recorder) Tones() []Tone {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]Tone{}, rc.tones...)
}

// Reader adapts c into an io.Reader, for libraries that take one.
func Reader(c Capabilities) io.Reader { return capReader{c} }

type capReader struct{ c Capabilities }

func (r capReader) Read(p []byte) (int, error) {
	b, err := r.c.SecureRandomBytes(len(p))
	if err != nil {
		return 0, err
	}
	return copy(p, b), nil
}

type ctxKey struct{}

// WithContext attaches c to ctx.
func WithContext(ctx context.Context, c Capabilities) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the capabilities attached to ctx, or System.
func FromContext(ctx context.Context) Capabilities {
	if c, ok := ctx.Value(ctxKey{}).(Capabilities); ok && c != nil {
		return c
	}
	return System{}
}
