package services

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the cart collectors. A nil *Metrics records nothing.
type Metrics struct {
	commits       *prometheus.CounterVec
	chargedTotal  prometheus.Counter
	cartMutations *prometheus.CounterVec
}

// NewMetrics creates the cart collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "symposium",
			Subsystem: "cart",
			Name:      "commits_total",
			Help:      "Cart commit attempts by outcome.",
		}, []string{"outcome"}),
		chargedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "symposium",
			Subsystem: "cart",
			Name:      "charged_minor_units_total",
			Help:      "Sum of amounts charged by successful commits, in minor currency units.",
		}),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "symposium",
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Selection changes by operation.",
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.commits, m.chargedTotal, m.cartMutations)
	}
	return m
}

func (m *Metrics) commit(outcome string) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(outcome).Inc()
}

func (m *Metrics) charged(amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.chargedTotal.Add(float64(amount))
}

func (m *Metrics) cartMutation(op string) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(op).Inc()
}
