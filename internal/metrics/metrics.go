// Package metrics collects game telemetry on a private Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the game counters.
type Collector struct {
	registry *prometheus.Registry

	guesses         *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	finished        *prometheus.CounterVec
	rewards         prometheus.Counter
	storageFallback prometheus.Counter
	purged          prometheus.Counter
}

// NewCollector registers the game metrics under namespace ("cafe_games" if empty).
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "cafe_games"
	}
	c := &Collector{registry: prometheus.NewRegistry()}

	c.guesses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guesses_total",
		Help:      "Accepted guesses by game and outcome.",
	}, []string{"game", "outcome"})

	c.rejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_guesses_total",
		Help:      "Guesses rejected without a state change, by game and reason.",
	}, []string{"game", "reason"})

	c.finished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rounds_finished_total",
		Help:      "Rounds reaching a terminal phase, by game and phase.",
	}, []string{"game", "phase"})

	c.rewards = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reward_codes_issued_total",
		Help:      "Reward codes generated for won word rounds.",
	})

	c.storageFallback = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "storage",
		Name:      "fallbacks_total",
		Help:      "Times the store fell back to memory-only persistence.",
	})

	c.purged = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "storage",
		Name:      "purged_records_total",
		Help:      "Stale daily records removed by the purge task.",
	})

	c.registry.MustRegister(c.guesses, c.rejected, c.finished, c.rewards, c.storageFallback, c.purged)
	return c
}

func (c *Collector) Guess(game, outcome string)   { c.guesses.WithLabelValues(game, outcome).Inc() }
func (c *Collector) Rejected(game, reason string) { c.rejected.WithLabelValues(game, reason).Inc() }
func (c *Collector) Finished(game, phase string)  { c.finished.WithLabelValues(game, phase).Inc() }
func (c *Collector) RewardIssued()                { c.rewards.Inc() }
func (c *Collector) StorageFallback()             { c.storageFallback.Inc() }
func (c *Collector) Purged(n int)                 { c.purged.Add(float64(n)) }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
