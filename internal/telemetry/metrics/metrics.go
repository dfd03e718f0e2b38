package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the telemetry gateway.
type Metrics struct {
	// Fetch latency including retries
	FetchLatency prometheus.Histogram

	// Fetches by result: "ok", "degraded", "cache_hit"
	Fetches *prometheus.CounterVec
}

// New creates a Metrics instance with all telemetry gateway metrics registered.
func New() *Metrics {
	return &Metrics{
		FetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "convoy_telemetry_fetch_duration_seconds",
			Help:    "Duration of telemetry score fetches including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		Fetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "convoy_telemetry_fetches_total",
			Help: "Total telemetry fetches by result",
		}, []string{"result"}),
	}
}

// ObserveFetch records the duration of a score fetch.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m != nil {
		m.FetchLatency.Observe(d.Seconds())
	}
}

// IncrementResult records a fetch result.
func (m *Metrics) IncrementResult(result string) {
	if m != nil {
		m.Fetches.WithLabelValues(result).Inc()
	}
}
