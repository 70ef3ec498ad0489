package utils

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Vote outcome labels recorded by the engine.
const (
	VoteAccepted       = "accepted"
	VoteRejected       = "rejected"
	VoteRateLimited    = "rate_limited"
	VoteInvalid        = "invalid"
	VoteNetworkFailure = "network_failure"
	VoteTimeout        = "timeout"
)

// Reconcile outcome labels.
const (
	ReconcileApplied  = "applied"
	ReconcileDeferred = "deferred"
	ReconcileDropped  = "dropped"
)

// Metrics tracks vote engine activity on its own registry so tests can
// run multiple instances without collector collisions.
type Metrics struct {
	registry *prometheus.Registry

	votesTotal     *prometheus.CounterVec
	submitDuration prometheus.Histogram
	reconcileTotal *prometheus.CounterVec
	subjectsLoaded prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		votesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vote_intents_total",
			Help: "Vote intents by final outcome",
		}, []string{"result"}),
		submitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vote_submit_duration_seconds",
			Help:    "Round-trip time of remote vote submissions",
			Buckets: prometheus.DefBuckets,
		}),
		reconcileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vote_reconcile_events_total",
			Help: "Realtime vote-delta events by outcome",
		}, []string{"outcome"}),
		subjectsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vote_subjects_loaded",
			Help: "Subjects currently held by the engine",
		}),
	}
	m.registry.MustRegister(
		m.votesTotal,
		m.submitDuration,
		m.reconcileTotal,
		m.subjectsLoaded,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveVote records the outcome of a vote intent. A zero duration means
// the intent never reached the backend (rate limited, invalid).
func (m *Metrics) ObserveVote(result string, duration time.Duration) {
	m.votesTotal.WithLabelValues(result).Inc()
	if duration > 0 {
		m.submitDuration.Observe(duration.Seconds())
	}
}

// ObserveReconcile records the handling of one realtime delta event.
func (m *Metrics) ObserveReconcile(outcome string) {
	m.reconcileTotal.WithLabelValues(outcome).Inc()
}

// SetSubjectsLoaded updates the loaded-subjects gauge.
func (m *Metrics) SetSubjectsLoaded(n int) {
	m.subjectsLoaded.Set(float64(n))
}

// Handler serves this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
