package solver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - Prometheus-метрики обращений к решателю.
//
// * solver_request_duration_seconds{algorithm} - histogram
// * solver_outcomes_total{algorithm,outcome} - counter (found/no_path/solver_error/transport)
// * solver_cache_lookups_total{result} - counter (hit/miss)
type Metrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	cache    *prometheus.CounterVec
}

// NewMetrics создаёт метрики и регистрирует их в reg (nil - дефолтный регистр)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "solver",
			Name:      "request_duration_seconds",
			Help:      "Длительность запросов к решателю.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"algorithm"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solver",
			Name:      "outcomes_total",
			Help:      "Исходы запросов к решателю.",
		}, []string{"algorithm", "outcome"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solver",
			Name:      "cache_lookups_total",
			Help:      "Обращения к кешу результатов решателя.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.duration, m.outcomes, m.cache)
	return m
}

func (m *Metrics) observe(algorithm string, seconds float64, outcome string) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(algorithm).Observe(seconds)
	m.outcomes.WithLabelValues(algorithm, outcome).Inc()
}

func (m *Metrics) cacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cache.WithLabelValues("hit").Inc()
	} else {
		m.cache.WithLabelValues("miss").Inc()
	}
}
