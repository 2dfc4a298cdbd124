package metrics

import (
	"time"
)

// RecordModel records the size of a freshly built model.
func (r *Registry) RecordModel(variant string, variables, constraints int) {
	r.ModelVariables.WithLabelValues(variant).Set(float64(variables))
	r.ModelConstraints.WithLabelValues(variant).Set(float64(constraints))
}

// RecordBuildError records an optimizer that could not be built.
func (r *Registry) RecordBuildError(variant string) {
	r.BuildErrorsTotal.WithLabelValues(variant).Inc()
}

// RecordSolve records a solver invocation.
func (r *Registry) RecordSolve(variant, status string, duration time.Duration, nodes int) {
	r.SolvesTotal.WithLabelValues(variant, status).Inc()
	r.SolveDuration.WithLabelValues(variant).Observe(duration.Seconds())
	r.SolveNodes.WithLabelValues(variant).Observe(float64(nodes))
}

// RecordSolution records the outcome of an extracted solution. A negative
// utilization means that the variant is not capacitated and is not recorded.
func (r *Registry) RecordSolution(variant string, routed int, utilization float64) {
	r.RoutedDemands.WithLabelValues(variant).Set(float64(routed))
	if utilization >= 0 {
		r.MaxUtilization.WithLabelValues(variant).Set(utilization)
	}
}
