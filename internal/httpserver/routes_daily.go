// internal/httpserver/routes_daily.go
//
// Daily game endpoints, mounted under /games behind the session middleware.
//
//   GET  /games/word         today's word round (created on first play)
//   POST /games/word/guess   {"guess":"LATTE"}
//   GET  /games/feud         today's feud session
//   POST /games/feud/guess   {"answer":"milk"}
//   POST /games/feud/next    advance a finished round
//
// Every response carries the recorded sound cues as "sounds". Rule violations
// answer with an error kind and the unchanged state.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/arcade"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/device"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/game"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/reward"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/session"
)

func (s *Server) mountGames(r chi.Router) {
	r.Use(s.limiter.middleware)
	r.Get("/word", s.handleWord)
	r.Post("/word/guess", s.handleWordGuess)
	r.Get("/feud", s.handleFeud)
	r.Post("/feud/guess", s.handleFeudGuess)
	r.Post("/feud/next", s.handleFeudNext)
}

type wordRes struct {
	arcade.WordView
	Sounds []device.Tone `json:"sounds,omitempty"`
}

type feudRes struct {
	arcade.FeudView
	Sounds []device.Tone `json:"sounds,omitempty"`
}

type wordGuessReq struct {
	Guess string `json:"guess"`
}

type feudGuessReq struct {
	Answer string `json:"answer"`
}

func (s *Server) handleWord(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Arcade.Word(r.Context(), session.ID(r.Context()))
	s.respond(w, r, wordRes{WordView: v, Sounds: sounds(r)}, err)
}

func (s *Server) handleWordGuess(w http.ResponseWriter, r *http.Request) {
	var req wordGuessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_json"})
		return
	}
	v, err := s.deps.Arcade.SubmitWord(r.Context(), session.ID(r.Context()), req.Guess)
	s.respond(w, r, wordRes{WordView: v, Sounds: sounds(r)}, err)
}

func (s *Server) handleFeud(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Arcade.Feud(r.Context(), session.ID(r.Context()))
	s.respond(w, r, feudRes{FeudView: v, Sounds: sounds(r)}, err)
}

func (s *Server) handleFeudGuess(w http.ResponseWriter, r *http.Request) {
	var req feudGuessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_json"})
		return
	}
	v, err := s.deps.Arcade.GuessFeud(r.Context(), session.ID(r.Context()), req.Answer)
	s.respond(w, r, feudRes{FeudView: v, Sounds: sounds(r)}, err)
}

func (s *Server) handleFeudNext(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Arcade.AdvanceFeud(r.Context(), session.ID(r.Context()))
	s.respond(w, r, feudRes{FeudView: v, Sounds: sounds(r)}, err)
}

// handleReward lets checkout staff verify a code.
func (s *Server) handleReward(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	tag := s.deps.RewardTag
	if tag == "" {
		tag = reward.DefaultTag
	}
	if !reward.Valid(code, strings.ToUpper(tag)) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_code"})
		return
	}
	if s.deps.Rewards == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown_code"})
		return
	}
	issued, err := s.deps.Rewards.Lookup(r.Context(), code)
	if errors.Is(err, reward.ErrUnknownCode) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown_code"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("code", code).Msg("lookup reward")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
		return
	}
	writeJSON(w, http.StatusOK, issued)
}

// respond writes state on success, or the error kind with state attached.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, state any, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, state)
		return
	}
	status, kind := classify(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("game request failed")
		writeJSON(w, status, errorBody{Error: kind})
		return
	}
	writeJSON(w, status, errorBody{Error: kind, Message: err.Error(), State: state})
}

// classify maps game and service errors to a status and error kind.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInvalidGuessLength):
		return http.StatusUnprocessableEntity, "invalid_guess_length"
	case errors.Is(err, game.ErrEmptyAnswer):
		return http.StatusUnprocessableEntity, "empty_answer"
	case errors.Is(err, game.ErrDuplicateAnswer):
		return http.StatusConflict, "duplicate_answer"
	case errors.Is(err, game.ErrRoundOver), errors.Is(err, game.ErrRoundNotActive):
		return http.StatusConflict, "round_over"
	case errors.Is(err, game.ErrRoundNotOver):
		return http.StatusConflict, "round_not_over"
	case errors.Is(err, arcade.ErrNoSession):
		return http.StatusUnauthorized, "no_session"
	}
	return http.StatusInternalServerError, "internal"
}
