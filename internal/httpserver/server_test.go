package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/arcade"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/daily"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/device"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/game"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/kv"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/metrics"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/reward"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/session"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/words"
)

// zeros is a random source of zero bytes: every code is WTAAAAAA.
type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

type memLedger struct {
	mu     sync.Mutex
	issued map[string]reward.Issued
}

func (l *memLedger) Record(_ context.Context, r reward.Issued) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.find(r.SessionID, r.Date); ok {
		return false, nil
	}
	l.issued[r.Code] = r
	return true, nil
}

func (l *memLedger) IssuedFor(_ context.Context, sessionID, date string) (reward.Issued, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.find(sessionID, date); ok {
		return r, nil
	}
	return reward.Issued{}, reward.ErrUnknownCode
}

func (l *memLedger) find(sessionID, date string) (reward.Issued, bool) {
	for _, r := range l.issued {
		if r.SessionID == sessionID && r.Date == date {
			return r, true
		}
	}
	return reward.Issued{}, false
}

func (l *memLedger) Lookup(_ context.Context, code string) (reward.Issued, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.issued[code]
	if !ok {
		return reward.Issued{}, reward.ErrUnknownCode
	}
	return r, nil
}

func newTestServer(t *testing.T, limit rate.Limit, burst int) *httptest.Server {
	t.Helper()
	list, err := words.New([]string{"LATTE"})
	require.NoError(t, err)
	questions := []game.FeudQuestion{{
		Prompt:  "Name something you add to coffee",
		Answers: []game.FeudAnswer{{Text: "Milk", Rank: 1, Points: 40}, {Text: "Sugar", Rank: 2, Points: 30}},
	}}
	now := func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	ledger := &memLedger{issued: map[string]reward.Issued{}}
	m := metrics.NewCollector("")

	a, err := arcade.New(arcade.Options{
		Words:      list,
		Questions:  questions,
		Lock:       daily.NewLock(kv.NewMemory(), now, time.UTC),
		Metrics:    m,
		FeudRounds: 1,
		RewardTag:  "WT",
		Ledger:     ledger,
	})
	require.NoError(t, err)
	sessions, err := session.NewManager("test-secret", false)
	require.NoError(t, err)

	srv := New(Deps{
		Arcade:     a,
		Sessions:   sessions,
		Metrics:    m,
		Rewards:    ledger,
		RewardTag:  "WT",
		Answers:    list.Len(),
		Questions:  len(questions),
		GuessRate:  limit,
		GuessBurst: burst,
		Random:     zeros{},
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// client keeps the session cookie between calls.
type client struct {
	t      *testing.T
	base   string
	cookie *http.Cookie
}

func (c *client) do(method, path, body string) (int, map[string]any) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, strings.NewReader(body))
	require.NoError(c.t, err)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()
	for _, ck := range res.Cookies() {
		if ck.Name == session.CookieName {
			c.cookie = ck
		}
	}
	var out map[string]any
	require.NoError(c.t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func TestHealthAndIndex(t *testing.T) {
	ts := newTestServer(t, rate.Inf, 1)
	c := &client{t: t, base: ts.URL}

	code, body := c.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])

	code, body = c.do(http.MethodGet, "/debug/words", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["answers"])
	assert.Equal(t, float64(1), body["questions"])

	code, body = c.do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", body["error"])
}

func TestWordFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t, rate.Inf, 1)
	c := &client{t: t, base: ts.URL}

	code, body := c.do(http.MethodGet, "/games/word", "")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, c.cookie)
	assert.True(t, c.cookie.HttpOnly)
	assert.Equal(t, "playing", body["gameState"])
	assert.Equal(t, float64(game.MaxGuesses), body["guessesLeft"])
	assert.NotContains(t, body, "solution")

	code, body = c.do(http.MethodPost, "/games/word/guess", `{"guess":"LAT"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "invalid_guess_length", body["error"])
	state := body["state"].(map[string]any)
	assert.Equal(t, float64(game.MaxGuesses), state["guessesLeft"])
	sounds := state["sounds"].([]any)
	require.Len(t, sounds, 1)
	assert.Equal(t, device.ToneInvalid.FreqHz, sounds[0].(map[string]any)["freq"])

	code, body = c.do(http.MethodPost, "/games/word/guess", `{"guess":"latte"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "won", body["gameState"])
	assert.Equal(t, "WTAAAAAA", body["couponCode"])
	assert.Equal(t, "LATTE", body["solution"])
	assert.Equal(t, true, body["persistent"])
	kb := body["keyboard"].(map[string]any)
	assert.Equal(t, "correct", kb["L"])

	code, body = c.do(http.MethodPost, "/games/word/guess", `{"guess":"latte"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "round_over", body["error"])

	code, body = c.do(http.MethodPost, "/games/word/guess", `{"guess":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "bad_json", body["error"])
}

func TestRewardLookup(t *testing.T) {
	ts := newTestServer(t, rate.Inf, 1)
	c := &client{t: t, base: ts.URL}

	code, _ := c.do(http.MethodPost, "/games/word/guess", `{"guess":"LATTE"}`)
	require.Equal(t, http.StatusOK, code)

	code, body := c.do(http.MethodGet, "/rewards/wtaaaaaa", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "WTAAAAAA", body["code"])
	assert.Equal(t, "2026-10-18", body["date"])
	assert.NotContains(t, body, "sessionId")

	code, body = c.do(http.MethodGet, "/rewards/WTBBBBBB", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "unknown_code", body["error"])

	code, body = c.do(http.MethodGet, "/rewards/WT0", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_code", body["error"])
}

func TestFeudFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t, rate.Inf, 1)
	c := &client{t: t, base: ts.URL}

	code, body := c.do(http.MethodGet, "/games/feud", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Name something you add to coffee", body["prompt"])
	assert.Equal(t, "playing", body["gameStatus"])

	code, body = c.do(http.MethodPost, "/games/feud/next", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "round_not_over", body["error"])

	code, body = c.do(http.MethodPost, "/games/feud/guess", `{"answer":"milk"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(40), body["score"])

	code, body = c.do(http.MethodPost, "/games/feud/guess", `{"answer":"MILK"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "duplicate_answer", body["error"])
	assert.Equal(t, "Already guessed", body["state"].(map[string]any)["message"])

	code, body = c.do(http.MethodPost, "/games/feud/guess", `{"answer":" "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "empty_answer", body["error"])

	code, body = c.do(http.MethodPost, "/games/feud/guess", `{"answer":"sugar"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "roundOver", body["gameStatus"])

	code, body = c.do(http.MethodPost, "/games/feud/next", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "gameComplete", body["gameStatus"])
	assert.Equal(t, float64(70), body["score"])
}

func TestPostsAreRateLimitedPerSession(t *testing.T) {
	ts := newTestServer(t, rate.Every(time.Hour), 1)
	c := &client{t: t, base: ts.URL}

	code, _ := c.do(http.MethodGet, "/games/word", "")
	require.Equal(t, http.StatusOK, code)

	code, _ = c.do(http.MethodPost, "/games/word/guess", `{"guess":"CRANE"}`)
	assert.Equal(t, http.StatusOK, code)

	code, body := c.do(http.MethodPost, "/games/word/guess", `{"guess":"CRANE"}`)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "rate_limited", body["error"])

	// Reads are never limited.
	code, _ = c.do(http.MethodGet, "/games/word", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{game.ErrInvalidGuessLength, http.StatusUnprocessableEntity, "invalid_guess_length"},
		{game.ErrEmptyAnswer, http.StatusUnprocessableEntity, "empty_answer"},
		{game.ErrDuplicateAnswer, http.StatusConflict, "duplicate_answer"},
		{game.ErrRoundOver, http.StatusConflict, "round_over"},
		{game.ErrRoundNotActive, http.StatusConflict, "round_over"},
		{game.ErrRoundNotOver, http.StatusConflict, "round_not_over"},
		{arcade.ErrNoSession, http.StatusUnauthorized, "no_session"},
		{context.DeadlineExceeded, http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		status, kind := classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.kind, kind, tt.err.Error())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, rate.Inf, 1)
	c := &client{t: t, base: ts.URL}
	_, _ = c.do(http.MethodPost, "/games/word/guess", `{"guess":"CRANE"}`)

	res, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	buf := new(strings.Builder)
	_, err = io.Copy(buf, res.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `cafe_games_guesses_total{game="word",outcome="miss"} 1`)
}
