package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for work order lifecycles.
type Metrics struct {
	Transitions *prometheus.CounterVec
	Rejections  *prometheus.CounterVec
	Created     prometheus.Counter
}

// New creates a Metrics instance with all work order metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "convoy_workorder_transitions_total",
			Help: "Applied work order transitions by from and to status",
		}, []string{"from", "to"}),

		Rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "convoy_workorder_rejections_total",
			Help: "Rejected work order transitions by reason",
		}, []string{"reason"}), // reason: "table", "role"

		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "convoy_workorder_created_total",
			Help: "Total work orders created",
		}),
	}
}

// IncrementTransition records one applied transition.
func (m *Metrics) IncrementTransition(from, to string) {
	if m != nil {
		m.Transitions.WithLabelValues(from, to).Inc()
	}
}

// IncrementRejection records one rejected transition.
func (m *Metrics) IncrementRejection(reason string) {
	if m != nil {
		m.Rejections.WithLabelValues(reason).Inc()
	}
}

// IncrementCreated records one created work order.
func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.Created.Inc()
	}
}
