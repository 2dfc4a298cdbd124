// Package survivable computes survivable routings over a capacitated network:
// for each demand, a working path and, where requested, a protection path that
// is link or node disjoint from it. Routings are computed exactly by solving
// one of six integer linear programs (see Variant).
package survivable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rhartert/survivable-routing/metrics"
	"github.com/rhartert/survivable-routing/network"
	"github.com/rhartert/survivable-routing/solver"
)

const tracerName = "github.com/rhartert/survivable-routing/survivable"

var (
	ErrInvalidVariant = errors.New("invalid variant")
	ErrMissingSRGs    = errors.New("variant requires shared risk groups")
	ErrNoDemands      = errors.New("no demands to route")
)

// Options configures an Optimizer. The zero value is valid.
type Options struct {
	// Mode selects how link disjointness is encoded. Defaults to
	// EdgeDisjoint.
	Mode DisjointnessMode

	// Solver solves the model. If nil, a solver.BranchAndBound configured
	// with SolverConfig is used.
	Solver solver.Solver

	// SolverConfig configures the default solver. It is ignored if Solver is
	// set. Its Logger is left nil (silent) unless explicitly set.
	SolverConfig solver.Config

	// Logger receives the optimizer's diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records model sizes and solve outcomes. Nil disables metrics.
	Metrics *metrics.Registry
}

// Optimizer owns the model of one variant for one topology, demand set and
// set of shared risk groups.
type Optimizer struct {
	variant Variant
	topo    *network.Topology
	demands []network.Demand
	layout  layout
	model   *solver.Model
	solver  solver.Solver
	log     *slog.Logger
	metrics *metrics.Registry
}

// NewOptimizer validates the inputs of variant v and builds its model. It
// fails if a demand is invalid, if v is capacitated and an edge has no
// capacity, or if v requires shared risk groups and srgs has none of the
// required kind. srgs may be nil for variants that do not use them.
func NewOptimizer(v Variant, t *network.Topology, demands *network.DemandSet, srgs *network.SRGs, opts Options) (*Optimizer, error) {
	o, err := newOptimizer(v, t, demands, srgs, opts)
	if err != nil && opts.Metrics != nil {
		opts.Metrics.RecordBuildError(v.String())
	}
	return o, err
}

func newOptimizer(v Variant, t *network.Topology, demands *network.DemandSet, srgs *network.SRGs, opts Options) (*Optimizer, error) {
	if !v.valid() {
		return nil, fmt.Errorf("%v: %w", v, ErrInvalidVariant)
	}
	if demands == nil || demands.Len() == 0 {
		return nil, fmt.Errorf("%v: %w", v, ErrNoDemands)
	}
	for _, d := range demands.Demands() {
		if err := network.ValidateDemand(t, d); err != nil {
			return nil, fmt.Errorf("%v: %w", v, err)
		}
	}
	if v.Capacitated() {
		if err := t.CheckCapacities(); err != nil {
			return nil, fmt.Errorf("%v: %w", v, err)
		}
	}

	var groups network.SRGs
	if srgs != nil {
		groups = *srgs
	}
	if v.UsesLinkSRGs() && len(groups.Links) == 0 {
		return nil, fmt.Errorf("%v: no link SRG: %w", v, ErrMissingSRGs)
	}
	if v.UsesNodeSRGs() && len(groups.Nodes) == 0 {
		return nil, fmt.Errorf("%v: no node SRG: %w", v, ErrMissingSRGs)
	}
	if err := groups.Validate(t); err != nil {
		return nil, fmt.Errorf("%v: %w", v, err)
	}

	s := opts.Solver
	if s == nil {
		bb, err := solver.NewBranchAndBound(opts.SolverConfig)
		if err != nil {
			return nil, fmt.Errorf("%v: solver configuration: %w", v, err)
		}
		s = bb
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	b := newConstraintBuilder(v, opts.Mode, t, slices.Clone(demands.Demands()), groups)
	o := &Optimizer{
		variant: v,
		topo:    t,
		demands: b.demands,
		layout:  b.layout,
		model:   b.build(),
		solver:  s,
		log:     log.With(slog.String("variant", v.String())),
		metrics: opts.Metrics,
	}

	o.log.Debug("model built",
		slog.Int("demands", len(o.demands)),
		slog.Int("variables", o.model.NumVars()),
		slog.Int("constraints", o.model.NumConstraints()),
		slog.String("mode", opts.Mode.String()),
	)
	if o.metrics != nil {
		o.metrics.RecordModel(v.String(), o.model.NumVars(), o.model.NumConstraints())
	}
	return o, nil
}

// Variant returns the variant solved by the optimizer.
func (o *Optimizer) Variant() Variant {
	return o.variant
}

// Model returns the model built for the variant.
//
// Important: the model is owned by the optimizer and should only be used in
// read-only operations.
func (o *Optimizer) Model() *solver.Model {
	return o.model
}

// Solve solves the model and extracts the routes of each demand.
//
// Infeasible and unbounded models are not errors: they yield a Solution
// without routes whose Status tells what happened. The same holds for solves
// stopped by a budget or by ctx before any solution was found. Errors are only
// returned when the solver itself fails.
func (o *Optimizer) Solve(ctx context.Context) (*Solution, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "survivable.Solve", trace.WithAttributes(
		attribute.String("variant", o.variant.String()),
		attribute.Int("demands", len(o.demands)),
		attribute.Int("variables", o.model.NumVars()),
		attribute.Int("constraints", o.model.NumConstraints()),
	))
	defer span.End()

	res, err := o.solver.Solve(ctx, o.model)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "solver failure")
		return nil, fmt.Errorf("solving %v: %w", o.variant, err)
	}
	span.SetAttributes(
		attribute.String("status", res.Status.String()),
		attribute.Int("nodes", res.Nodes),
	)
	if o.metrics != nil {
		o.metrics.RecordSolve(o.variant.String(), res.Status.String(), res.Duration, res.Nodes)
	}

	sol := &Solution{
		Variant: o.variant,
		Status:  res.Status,
		topo:    o.topo,
	}

	switch {
	case res.Status == solver.StatusOptimal && res.HasSolution():
		sol.Proven = true
	case res.Status == solver.StatusInfeasible, res.Status == solver.StatusInfeasibleOrUnbounded:
		o.log.Warn("no solution", slog.String("status", res.Status.String()))
		return sol, nil
	case res.Status == solver.StatusUnbounded:
		o.log.Error("unbounded model: the constraints are malformed", slog.String("status", res.Status.String()))
		return sol, nil
	case res.Status.Limited():
		if !res.HasSolution() {
			o.log.Warn("no solution found within budget", slog.String("status", res.Status.String()))
			return sol, nil
		}
		o.log.Warn("returning unproven solution",
			slog.String("status", res.Status.String()),
			slog.Float64("gap", res.Gap()),
		)
	default:
		err := fmt.Errorf("solving %v: unexpected solver status %v (solution: %t)", o.variant, res.Status, res.HasSolution())
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected status")
		return nil, err
	}

	_, extractSpan := otel.Tracer(tracerName).Start(ctx, "survivable.Extract")
	sol.Routes = o.extract(res)
	sol.Objective = res.Objective
	sol.Bound = res.Bound
	extractSpan.End()

	if o.metrics != nil {
		util := -1.0
		if o.variant.Capacitated() {
			_, util = sol.Loads().MostUtilized()
		}
		o.metrics.RecordSolution(o.variant.String(), len(sol.Routes), util)
	}
	o.log.Debug("solution extracted",
		slog.Float64("objective", sol.Objective),
		slog.Bool("proven", sol.Proven),
	)
	return sol, nil
}
