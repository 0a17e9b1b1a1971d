package reactor

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeUpdated = "updated"
	outcomeSkipped = "skipped"
	outcomeMissing = "missing"
	outcomeFailed  = "failed"
)

// Metrics counts processed notification entries by outcome.
type Metrics struct {
	events *prometheus.CounterVec
}

// NewMetrics registers the reactor counters on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upload_events_total",
				Help: "Object-created notification entries processed, by outcome.",
			},
			[]string{"outcome"},
		),
	}
	if err := reg.Register(m.events); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(outcome).Inc()
}
