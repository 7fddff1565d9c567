// Package lifecycle owns the process-wide scheduled tasks.
//
// Periodic work (purging stale daily records, heartbeats) is registered here
// with an explicit schedule and only runs between Start and Stop.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Task is a unit of scheduled work. ctx is cancelled when the manager stops
// and renewed by the next Start.
type Task func(ctx context.Context)

// Manager schedules tasks on a cron.
type Manager struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	tasks   map[string]cron.EntryID
	started bool
}

// New creates a stopped manager evaluating schedules in loc.
func New(loc *time.Location) *Manager {
	if loc == nil {
		loc = time.Local
	}
	return &Manager{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
		),
		tasks: make(map[string]cron.EntryID),
	}
}

// Add registers fn under a unique name with a cron spec ("@daily", "0 3 * * *", "@every 1h").
func (m *Manager) Add(name, spec string, fn Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.tasks[name]; dup {
		return fmt.Errorf("lifecycle: task %q already registered", name)
	}
	id, err := m.cron.AddFunc(spec, func() {
		start := time.Now()
		fn(m.runCtx())
		log.Debug().Str("task", name).Dur("took", time.Since(start)).Msg("task finished")
	})
	if err != nil {
		return fmt.Errorf("lifecycle: task %q: %w", name, err)
	}
	m.tasks[name] = id
	return nil
}

// Next returns when name runs next; zero before Start or for unknown tasks.
func (m *Manager) Next(name string) time.Time {
	m.mu.Lock()
	id, ok := m.tasks[name]
	m.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return m.cron.Entry(id).Next
}

// runCtx is the context of the current run; cancelled outside Start/Stop.
func (m *Manager) runCtx() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return m.ctx
}

// Start begins running tasks with a fresh context. Calling it while running
// is a no-op; calling it after Stop resumes the schedule.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.cron.Start()
	log.Info().Int("tasks", len(m.tasks)).Msg("scheduler started")
}

// Stop halts scheduling, cancels running tasks' context and waits for them
// (or for ctx to expire).
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	started := m.started
	m.started = false
	cancel := m.cancel
	m.mu.Unlock()
	if !started {
		return nil
	}
	done := m.cron.Stop()
	cancel()
	select {
	case <-done.Done():
		log.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("lifecycle: stop: %w", ctx.Err())
	}
}

// cronLogger routes cron's logging into zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
