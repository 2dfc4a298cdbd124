// Package metrics exposes Prometheus metrics on the optimizations run by the
// survivable package.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all the metrics of the application.
type Registry struct {
	SolvesTotal      *prometheus.CounterVec
	SolveDuration    *prometheus.HistogramVec
	SolveNodes       *prometheus.HistogramVec
	BuildErrorsTotal *prometheus.CounterVec
	ModelVariables   *prometheus.GaugeVec
	ModelConstraints *prometheus.GaugeVec
	RoutedDemands    *prometheus.GaugeVec
	MaxUtilization   *prometheus.GaugeVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.SolvesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "survivable_solves_total",
			Help: "Total number of optimizations by variant and solver status",
		},
		[]string{"variant", "status"},
	)

	r.SolveDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "survivable_solve_duration_seconds",
			Help:    "Solver wall-clock duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60, 600},
		},
		[]string{"variant"},
	)

	r.SolveNodes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "survivable_solve_nodes",
			Help:    "Number of branch-and-bound nodes explored per solve",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		},
		[]string{"variant"},
	)

	r.BuildErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "survivable_build_errors_total",
			Help: "Total number of optimizers that could not be built",
		},
		[]string{"variant"},
	)

	r.ModelVariables = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "survivable_model_variables",
			Help: "Number of binary variables of the last model built",
		},
		[]string{"variant"},
	)

	r.ModelConstraints = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "survivable_model_constraints",
			Help: "Number of constraints of the last model built",
		},
		[]string{"variant"},
	)

	r.RoutedDemands = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "survivable_routed_demands",
			Help: "Number of demands routed by the last solution",
		},
		[]string{"variant"},
	)

	r.MaxUtilization = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "survivable_max_link_utilization",
			Help: "Highest arc utilization of the last solution (capacitated variants)",
		},
		[]string{"variant"},
	)

	return r
}

// Gatherer returns the underlying Prometheus registry, e.g. to expose it with
// promhttp or to dump it at the end of a run.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
