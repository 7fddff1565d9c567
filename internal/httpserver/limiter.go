package httpserver

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/session"
)

// maxLimiters bounds the per-session table; it is cleared when full.
const maxLimiters = 10000

// sessionLimiter keeps one token bucket per session id.
type sessionLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*rate.Limiter
}

func newSessionLimiter(limit rate.Limit, burst int) *sessionLimiter {
	if limit <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &sessionLimiter{limit: limit, burst: burst, buckets: make(map[string]*rate.Limiter)}
}

func (l *sessionLimiter) allow(sid string) bool {
	l.mu.Lock()
	b, ok := l.buckets[sid]
	if !ok {
		if len(l.buckets) >= maxLimiters {
			l.buckets = make(map[string]*rate.Limiter)
		}
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[sid] = b
	}
	l.mu.Unlock()
	return b.Allow()
}

// middleware rejects POSTs over the session's budget. Must run after the
// session middleware.
func (l *sessionLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !l.allow(session.ID(r.Context())) {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate_limited", Message: "slow down"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
