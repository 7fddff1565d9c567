package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/assets"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/arcade"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/config"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/httpserver"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/session"
	"github.com/Jaydeep-Nadkarni/Cafe-Mangement-System-sub002/internal/words"
)

const shutdownGrace = 10 * time.Second

// serve runs the HTTP server and scheduled tasks until SIGINT/SIGTERM.
func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	list, err := words.Load(cfg.WordsFile)
	if err != nil {
		return fmt.Errorf("load word list: %w", err)
	}
	questions, err := assets.Questions()
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	opts := arcade.Options{
		Words:      list,
		Questions:  questions,
		Lock:       a.lock,
		Metrics:    a.metrics,
		FeudRounds: cfg.FeudRounds,
		RewardTag:  cfg.RewardTag,
		Persistent: func() bool { return !a.store.Degraded() },
	}
	deps := httpserver.Deps{
		Metrics:      a.metrics,
		RewardTag:    cfg.RewardTag,
		Answers:      list.Len(),
		Questions:    len(questions),
		ClientOrigin: cfg.ClientOrigin,
		GuessRate:    cfg.GuessRate,
		GuessBurst:   cfg.GuessBurst,
		HandlerLimit: cfg.HandlerLimit,
	}
	if a.ledger != nil {
		opts.Ledger = a.ledger
		deps.Rewards = a.ledger
	}
	if deps.Arcade, err = arcade.New(opts); err != nil {
		return err
	}
	if deps.Sessions, err = session.NewManager(cfg.SessionSecret, cfg.SecureCookies); err != nil {
		return err
	}

	sched, err := a.scheduler(func() map[string]any {
		return map[string]any{"answers": list.Len(), "questions": len(questions)}
	})
	if err != nil {
		return err
	}
	sched.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpserver.New(deps).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).
			Int("answers", list.Len()).Int("questions", len(questions)).Msg("starting cafe-games server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		_ = sched.Stop(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server exited: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	if err := sched.Stop(shutCtx); err != nil {
		log.Warn().Err(err).Msg("scheduler shutdown")
	}
	return nil
}

// purgeOnce runs the stale-record purge a single time.
func purgeOnce(ctx context.Context, cfg *config.Config, out io.Writer) error {
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	n, err := a.purge(ctx)
	if err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	_, _ = fmt.Fprintf(out, "removed %d stale records\n", n)
	return nil
}
