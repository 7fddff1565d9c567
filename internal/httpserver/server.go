// internal/httpserver/server.go
//
// HTTP server wiring for the cafe mini-games.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Per-request device capabilities (secure randomness, recorded sound cues).
//   - Browser-session cookie; every game route runs for an anonymous session.
//   - Public endpoints: "/", "/health", "/metrics", "/debug/words".
//   - Game endpoints under /games, reward lookup under /rewards.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the session cookie works).
//   - POST routes are rate limited per session.

package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/arcade"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/device"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/metrics"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/reward"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/session"
)

// RewardLookup resolves an issued reward code.
type RewardLookup interface {
	Lookup(ctx context.Context, code string) (reward.Issued, error)
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Arcade    *arcade.Arcade
	Sessions  *session.Manager
	Metrics   *metrics.Collector
	Rewards   RewardLookup // optional; /rewards/{code} answers 404 without it
	RewardTag string

	Answers   int // word list size, reported by /debug/words
	Questions int // question bank size, reported by /debug/words

	ClientOrigin string
	GuessRate    rate.Limit
	GuessBurst   int
	HandlerLimit time.Duration

	// Random feeds each request's device.Recorder. Defaults to crypto/rand.
	Random io.Reader
}

// Server bundles the router and its collaborators.
type Server struct {
	r       *chi.Mux
	deps    Deps
	limiter *sessionLimiter
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.Random == nil {
		d.Random = rand.Reader
	}
	if d.HandlerLimit <= 0 {
		d.HandlerLimit = 10 * time.Second
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewCollector("")
	}
	s := &Server{
		r:       chi.NewRouter(),
		deps:    d,
		limiter: newSessionLimiter(d.GuessRate, d.GuessBurst),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(d.HandlerLimit))
	s.r.Use(jsonContentType)
	s.r.Use(cors(d.ClientOrigin))
	s.r.Use(s.withDevice)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"cafe-games","endpoints":["/health","/metrics","/games/word","/games/feud","/rewards/{code}"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"answers": d.Answers, "questions": d.Questions})
	})

	// --- games (anonymous browser session) ---
	s.r.Route("/games", func(g chi.Router) {
		g.Use(d.Sessions.Middleware)
		s.mountGames(g)
	})

	s.r.Get("/rewards/{code}", s.handleReward)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: r.URL.Path})
	})

	return s
}

// Handler exposes the router, for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// withDevice gives each request its own recorder over the server's random source.
func (s *Server) withDevice(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := device.NewRecorder(s.deps.Random)
		next.ServeHTTP(w, r.WithContext(device.WithContext(r.Context(), rec)))
	})
}

// ------------------------------ helpers ------------------------------------

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	State   any    `json:"state,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sounds returns the tones recorded for this request.
func sounds(r *http.Request) []device.Tone {
	if rec, ok := device.FromContext(r.Context()).(*device.Recorder); ok {
		return rec.Tones()
	}
	return nil
}
