package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for intervention queue builds.
type Metrics struct {
	BuildLatency prometheus.Histogram
	QueueSize    prometheus.Histogram
}

// New creates a Metrics instance with all intervention metrics registered.
func New() *Metrics {
	return &Metrics{
		BuildLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "convoy_intervention_build_duration_seconds",
			Help:    "Duration of intervention queue builds including store reads",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		QueueSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "convoy_intervention_queue_size",
			Help:    "Number of drivers ranked into each built queue",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
	}
}

// ObserveBuild records one completed queue build.
func (m *Metrics) ObserveBuild(d time.Duration, size int) {
	if m != nil {
		m.BuildLatency.Observe(d.Seconds())
		m.QueueSize.Observe(float64(size))
	}
}
