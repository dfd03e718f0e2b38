package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for compliance snapshots.
type Metrics struct {
	SnapshotLatency prometheus.Histogram
	QueueItems      *prometheus.CounterVec
}

// New creates a Metrics instance with all compliance metrics registered.
func New() *Metrics {
	return &Metrics{
		SnapshotLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "convoy_compliance_snapshot_duration_seconds",
			Help:    "Duration of compliance snapshot builds including store reads",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		QueueItems: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "convoy_compliance_queue_items_total",
			Help: "Queue items produced per snapshot by source",
		}, []string{"source"}),
	}
}

// ObserveSnapshot records one completed snapshot build.
func (m *Metrics) ObserveSnapshot(d time.Duration) {
	if m != nil {
		m.SnapshotLatency.Observe(d.Seconds())
	}
}

// CountItem records one produced queue item.
func (m *Metrics) CountItem(source string) {
	if m != nil {
		m.QueueItems.WithLabelValues(source).Inc()
	}
}
