package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the scoring module.
type Metrics struct {
	// Evidence gathering latencies by source
	EvidenceLatency *prometheus.HistogramVec

	// Scoring outcomes by band and degraded flag
	ScoreOutcome *prometheus.CounterVec

	// Overall scoring latency including evidence gathering
	ScoreLatency prometheus.Histogram

	// Events ingested by type
	EventsIngested *prometheus.CounterVec
}

// New creates a Metrics instance with all scoring module metrics registered.
func New() *Metrics {
	return &Metrics{
		EvidenceLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "convoy_scoring_evidence_duration_seconds",
			Help:    "Duration of evidence gathering operations by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}), // source: "driver", "events", "telemetry"

		ScoreOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "convoy_scoring_outcomes_total",
			Help: "Total scoring runs by band and degraded flag",
		}, []string{"band", "degraded"}),

		ScoreLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "convoy_scoring_duration_seconds",
			Help:    "Duration of full scoring runs including evidence gathering",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		EventsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "convoy_scoring_events_ingested_total",
			Help: "Total risk events ingested by type",
		}, []string{"type"}),
	}
}

// ObserveEvidenceLatency records the duration of one evidence fetch.
func (m *Metrics) ObserveEvidenceLatency(source string, d time.Duration) {
	if m != nil {
		m.EvidenceLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementOutcome records a completed scoring run.
func (m *Metrics) IncrementOutcome(band string, degraded bool) {
	if m != nil {
		flag := "false"
		if degraded {
			flag = "true"
		}
		m.ScoreOutcome.WithLabelValues(band, flag).Inc()
	}
}

// ObserveScoreLatency records the total scoring duration.
func (m *Metrics) ObserveScoreLatency(d time.Duration) {
	if m != nil {
		m.ScoreLatency.Observe(d.Seconds())
	}
}

// IncrementIngested records an ingested risk event.
func (m *Metrics) IncrementIngested(eventType string) {
	if m != nil {
		m.EventsIngested.WithLabelValues(eventType).Inc()
	}
}
