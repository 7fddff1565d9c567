// Package session identifies a browsing session.
//
// The session id seeds the daily puzzle choice and namespaces the daily lock.
// It is generated once from the secure random capability and carried in an
// HS256-signed cookie without Expires, so it lives as long as the browser
// session. The signing key is derived from SESSION_SECRET with HKDF-SHA256.
package session

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/hkdf"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/device"
)

// CookieName is the session cookie.
const CookieName = "cafe_games_session"

var ErrInvalidToken = errors.New("session: invalid token")

// Manager signs and verifies session cookies.
type Manager struct {
	key    []byte
	secure bool
}

// NewManager derives the signing key from secret. secure marks cookies
// Secure + SameSite=None for cross-site production use.
func NewManager(secret string, secure bool) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session: empty secret")
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("cafe-games session v1"))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("session: derive key: %w", err)
	}
	return &Manager{key: key, secure: secure}, nil
}

// NewID generates a random session id from caps.
func NewID(caps device.Capabilities) (string, error) {
	id, err := uuid.NewRandomFromReader(device.Reader(caps))
	if err != nil {
		return "", fmt.Errorf("session: new id: %w", err)
	}
	return id.String(), nil
}

// Sign creates a token for id.
func (m *Manager) Sign(id string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": id,
		"iat": time.Now().Unix(),
	})
	return t.SignedString(m.key)
}

// Parse verifies a token and returns its session id.
func (m *Manager) Parse(token string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}
	sid, _ := claims["sid"].(string)
	if _, err := uuid.Parse(sid); err != nil {
		return "", ErrInvalidToken
	}
	return sid, nil
}

// Middleware attaches the session id to every request, minting a new session
// (and cookie) when the request has none or an invalid one.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
			if sid, err := m.Parse(c.Value); err == nil {
				next.ServeHTTP(w, r.WithContext(WithID(r.Context(), sid)))
				return
			}
		}

		sid, err := NewID(device.FromContext(r.Context()))
		if err != nil {
			log.Error().Err(err).Msg("mint session")
			http.Error(w, `{"error":"session_unavailable"}`, http.StatusInternalServerError)
			return
		}
		tok, err := m.Sign(sid)
		if err != nil {
			log.Error().Err(err).Msg("sign session")
			http.Error(w, `{"error":"session_unavailable"}`, http.StatusInternalServerError)
			return
		}
		m.setCookie(w, tok)
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), sid)))
	})
}

// setCookie writes a browser-session cookie (no Expires / MaxAge).
func (m *Manager) setCookie(w http.ResponseWriter, token string) {
	sameSite := http.SameSiteLaxMode
	if m.secure {
		sameSite = http.SameSiteNoneMode // required for third‑party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: sameSite,
	})
}

type ctxKey struct{}

// WithID stores a session id in ctx.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// ID returns the session id from ctx, or "".
func ID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
