// Package kv is the key-value persistence used by the daily lock.
//
// Stores are TTL-free: Get, Set and Remove by string key. Date policy lives one
// layer up in package daily. Backends: memory (this process only), SQL
// (SQLite), and Redis; Resilient wraps any of them and drops to memory when the
// backend fails.
package kv

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = errors.New("kv: not found")
	// ErrStorageUnavailable wraps backend failures (I/O, network, driver).
	ErrStorageUnavailable = errors.New("kv: storage unavailable")
)

// Store defines the persistence interface.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Scanner is implemented by stores that can list keys.
type Scanner interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
