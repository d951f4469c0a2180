package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the pricing engine's collectors.
type Metrics struct {
	SolverIterations    *prometheus.HistogramVec
	SolverNonConverged  *prometheus.CounterVec
	BatchChannelFailure *prometheus.CounterVec
	RuleLookups         *prometheus.CounterVec
}

// NewRegistry returns the registry for pricing metrics. Go, process and
// gorm pool metrics live on the default registry and are served next to it.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SolverIterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pricestack",
			Name:      "solver_iterations",
			Help:      "Iterations used by the pricing solvers.",
			Buckets:   []float64{1, 2, 3, 5, 8, 10, 15, 20},
		}, []string{"solver"}),
		SolverNonConverged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricestack",
			Name:      "solver_non_converged_total",
			Help:      "Solver runs that hit the iteration cap.",
		}, []string{"solver"}),
		BatchChannelFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricestack",
			Name:      "batch_channel_failures_total",
			Help:      "Channels excluded from batch price generation.",
		}, []string{"channel"}),
		RuleLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricestack",
			Name:      "commission_rule_lookups_total",
			Help:      "Commission rule lookups by resolution source.",
		}, []string{"source"}),
	}
	if reg != nil {
		reg.MustRegister(m.SolverIterations, m.SolverNonConverged, m.BatchChannelFailure, m.RuleLookups)
	}
	return m
}

// ObserveSolver records one solver run.
func (m *Metrics) ObserveSolver(solver string, iterations int, converged bool) {
	if m == nil {
		return
	}
	m.SolverIterations.WithLabelValues(solver).Observe(float64(iterations))
	if !converged {
		m.SolverNonConverged.WithLabelValues(solver).Inc()
	}
}
