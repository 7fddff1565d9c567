// app.go
//
// Process wiring shared by the serve and purge commands: store selection,
// the memory fallback, the reward ledger and the scheduled tasks.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/assets"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/config"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/daily"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/kv"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/lifecycle"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/metrics"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/reward"
)

type app struct {
	cfg     *config.Config
	metrics *metrics.Collector
	store   *kv.Resilient
	lock    *daily.Lock
	ledger  *reward.Ledger // nil unless the backend is sqlite
	closers []func() error
}

// openApp connects the configured backend and wraps it with the memory fallback.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.NewCollector("")}

	var primary kv.Store
	switch cfg.StoreBackend {
	case "sqlite":
		db, err := openDB(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := migrate(db, assets.Migrations, "sql"); err != nil {
			a.close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		primary = kv.NewSQL(db)
		a.ledger = reward.NewLedger(db)
	case "redis":
		r, err := kv.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			// Still playable: the first call switches to memory.
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable")
			primary = unreachable{err: err}
		} else {
			a.closers = append(a.closers, r.Close)
			primary = r
		}
	default:
		primary = kv.NewMemory()
	}

	a.store = kv.NewResilient(primary, func(error) { a.metrics.StorageFallback() })
	a.lock = daily.NewLock(a.store, time.Now, cfg.Location)
	return a, nil
}

// purge removes records of past days and reports how many went.
func (a *app) purge(ctx context.Context) (int, error) {
	n, err := a.lock.PurgeStale(ctx, daily.KeyPrefix)
	a.metrics.Purged(n)
	return n, err
}

// scheduler registers the periodic tasks. heartbeat fields are logged hourly.
func (a *app) scheduler(heartbeat func() map[string]any) (*lifecycle.Manager, error) {
	m := lifecycle.New(a.cfg.Location)
	err := m.Add("purge-stale", a.cfg.PurgeSpec, func(ctx context.Context) {
		n, err := a.purge(ctx)
		if err != nil {
			log.Warn().Err(err).Int("removed", n).Msg("purge stale records")
			return
		}
		log.Info().Int("removed", n).Msg("purged stale records")
	})
	if err != nil {
		return nil, err
	}
	err = m.Add("heartbeat", "@hourly", func(context.Context) {
		log.Info().Fields(heartbeat()).Bool("degraded", a.store.Degraded()).Msg("heartbeat")
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}
	a.closers = nil
}

// unreachable is a Store whose every call fails as unavailable.
type unreachable struct{ err error }

func (u unreachable) Get(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("%w: %v", kv.ErrStorageUnavailable, u.err)
}

func (u unreachable) Set(context.Context, string, []byte) error {
	return fmt.Errorf("%w: %v", kv.ErrStorageUnavailable, u.err)
}

func (u unreachable) Remove(context.Context, string) error {
	return fmt.Errorf("%w: %v", kv.ErrStorageUnavailable, u.err)
}
