package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for coaching workflows.
type Metrics struct {
	Transitions *prometheus.CounterVec
	Rejections  *prometheus.CounterVec
	Outcomes    *prometheus.CounterVec
}

// New creates a Metrics instance with all coaching metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "convoy_coaching_checkin_transitions_total",
			Help: "Applied check-in transitions by from and to status",
		}, []string{"from", "to"}),

		Rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "convoy_coaching_checkin_rejections_total",
			Help: "Rejected check-in transitions by requested status",
		}, []string{"to"}),

		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "convoy_coaching_outcomes_total",
			Help: "Evaluated plan outcomes by trend",
		}, []string{"trend"}),
	}
}

// IncrementTransition records one applied check-in transition.
func (m *Metrics) IncrementTransition(from, to string) {
	if m != nil {
		m.Transitions.WithLabelValues(from, to).Inc()
	}
}

// IncrementRejection records one rejected check-in transition.
func (m *Metrics) IncrementRejection(to string) {
	if m != nil {
		m.Rejections.WithLabelValues(to).Inc()
	}
}

// IncrementOutcome records one evaluated plan outcome.
func (m *Metrics) IncrementOutcome(trend string) {
	if m != nil {
		m.Outcomes.WithLabelValues(trend).Inc()
	}
}
