// internal/kv/resilient.go
//
// Resilient keeps the games playable when the backend fails: the first
// ErrStorageUnavailable switches every later call to an in-memory store for
// the rest of the process. Progress made after the switch does not survive a
// restart.

package kv

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// Resilient wraps a primary Store with an in-memory fallback.
type Resilient struct {
	primary   Store
	fallback  *Memory
	onDegrade func(error)

	mu       sync.RWMutex
	degraded bool
}

// NewResilient wraps primary. onDegrade, if set, is called once when the
// fallback engages.
func NewResilient(primary Store, onDegrade func(error)) *Resilient {
	return &Resilient{primary: primary, fallback: NewMemory(), onDegrade: onDegrade}
}

// Degraded reports whether writes are memory-only.
func (r *Resilient) Degraded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.degraded
}

func (r *Resilient) active() Store {
	if r.Degraded() {
		return r.fallback
	}
	return r.primary
}

// degrade switches to memory if err is a backend failure. It reports whether
// the caller should retry against the fallback.
func (r *Resilient) degrade(op string, err error) bool {
	if !errors.Is(err, ErrStorageUnavailable) {
		return false
	}
	r.mu.Lock()
	first := !r.degraded
	r.degraded = true
	r.mu.Unlock()
	if first {
		log.Warn().Err(err).Str("op", op).Msg("storage unavailable; continuing in memory")
		if r.onDegrade != nil {
			r.onDegrade(err)
		}
	}
	return true
}

func (r *Resilient) Get(ctx context.Context, key string) ([]byte, error) {
	s := r.active()
	v, err := s.Get(ctx, key)
	if err != nil && s != Store(r.fallback) && r.degrade("get", err) {
		return r.fallback.Get(ctx, key)
	}
	return v, err
}

func (r *Resilient) Set(ctx context.Context, key string, value []byte) error {
	s := r.active()
	err := s.Set(ctx, key, value)
	if err != nil && s != Store(r.fallback) && r.degrade("set", err) {
		return r.fallback.Set(ctx, key, value)
	}
	return err
}

func (r *Resilient) Remove(ctx context.Context, key string) error {
	s := r.active()
	err := s.Remove(ctx, key)
	if err != nil && s != Store(r.fallback) && r.degrade("remove", err) {
		return r.fallback.Remove(ctx, key)
	}
	return err
}

// Keys lists keys from the active store. A primary without Scanner support
// yields no keys.
func (r *Resilient) Keys(ctx context.Context, prefix string) ([]string, error) {
	s := r.active()
	sc, ok := s.(Scanner)
	if !ok {
		return nil, nil
	}
	keys, err := sc.Keys(ctx, prefix)
	if err != nil && s != Store(r.fallback) && r.degrade("keys", err) {
		return r.fallback.Keys(ctx, prefix)
	}
	return keys, err
}
