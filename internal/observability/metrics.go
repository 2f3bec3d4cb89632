// Package observability exposes the Prometheus metrics the interview
// runtime emits: debounce persistence failures, SSE listener evictions, and
// completion workflow outcomes. Call NewMetrics once at process startup;
// it registers with the default Prometheus registry.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/gauge the interview runtime records.
type Metrics struct {
	// DebouncePersistErrors counts store-persistence failures encountered
	// while handling an artifact submission. Labels: pipeline (code|design).
	DebouncePersistErrors *prometheus.CounterVec

	// SSEListenerEvictions counts SSE listeners dropped because their
	// buffer filled before the client drained it.
	SSEListenerEvictions prometheus.Counter

	// CompletionOutcomes counts completion workflow runs by outcome.
	// Labels: outcome (success|notify_failed|db_update_failed).
	CompletionOutcomes *prometheus.CounterVec

	// ActiveSessions tracks interview sessions currently in progress.
	ActiveSessions prometheus.Gauge

	// PhaseTransitions counts phase advances across all sessions.
	PhaseTransitions prometheus.Counter
}

// NewMetrics builds and registers all metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		DebouncePersistErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_debounce_persist_errors_total",
				Help: "Total number of store persistence failures encountered while handling a debounced artifact submission",
			},
			[]string{"pipeline"},
		),

		SSEListenerEvictions: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "interview_sse_listener_evictions_total",
				Help: "Total number of SSE listeners evicted because their buffer filled before being drained",
			},
		),

		CompletionOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_completion_outcomes_total",
				Help: "Total number of completion workflow runs by outcome",
			},
			[]string{"outcome"},
		),

		ActiveSessions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "interview_active_sessions",
				Help: "Current number of interview sessions in progress",
			},
		),

		PhaseTransitions: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "interview_phase_transitions_total",
				Help: "Total number of phase transitions across all sessions",
			},
		),
	}
}

// RecordDebouncePersistError increments the persist-error counter for pipeline.
func (m *Metrics) RecordDebouncePersistError(pipeline string) {
	if m == nil {
		return
	}
	m.DebouncePersistErrors.WithLabelValues(pipeline).Inc()
}

// RecordSSEListenerEviction increments the SSE eviction counter.
func (m *Metrics) RecordSSEListenerEviction() {
	if m == nil {
		return
	}
	m.SSEListenerEvictions.Inc()
}

// RecordCompletionOutcome increments the completion outcome counter.
func (m *Metrics) RecordCompletionOutcome(outcome string) {
	if m == nil {
		return
	}
	m.CompletionOutcomes.WithLabelValues(outcome).Inc()
}

// SessionStarted increments the active sessions gauge.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

// SessionEnded decrements the active sessions gauge.
func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

// PhaseTransitioned increments the phase transition counter.
func (m *Metrics) PhaseTransitioned() {
	if m == nil {
		return
	}
	m.PhaseTransitions.Inc()
}
