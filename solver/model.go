// Package solver provides a small mixed integer linear programming capability:
// a model made of binary variables, linear constraints and a minimization
// objective, and an exact branch-and-bound solver for such models.
package solver

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Var identifies a decision variable in a Model.
type Var int

// Term is a variable multiplied by a coefficient.
type Term struct {
	Var  Var
	Coef float64
}

// Sense is the comparison operator of a linear constraint.
type Sense int8

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Equal:
		return "="
	default:
		return fmt.Sprintf("Sense(%d)", int8(s))
	}
}

// Constraint is a linear constraint Σ terms (sense) RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Model is a minimization problem over binary variables.
type Model struct {
	name   string
	vars   []string
	obj    []float64
	constr []Constraint
}

// NewModel returns a new empty model.
func NewModel(name string) *Model {
	return &Model{name: name}
}

// Name returns the name of the model.
func (m *Model) Name() string {
	return m.name
}

// AddBinary declares a new binary variable and returns it.
func (m *Model) AddBinary(name string) Var {
	m.vars = append(m.vars, name)
	m.obj = append(m.obj, 0)
	return Var(len(m.vars) - 1)
}

// AddConstraint adds the linear constraint Σ terms (sense) rhs to the model.
// Terms on the same variable are summed. It panics if a term references a
// variable that is not in the model.
func (m *Model) AddConstraint(name string, terms []Term, sense Sense, rhs float64) {
	for _, t := range terms {
		m.checkVar(t.Var)
	}
	m.constr = append(m.constr, Constraint{
		Name:  name,
		Terms: terms,
		Sense: sense,
		RHS:   rhs,
	})
}

// SetObjective replaces the objective of the model with the minimization of
// Σ terms. Terms on the same variable are summed.
func (m *Model) SetObjective(terms []Term) {
	for i := range m.obj {
		m.obj[i] = 0
	}
	for _, t := range terms {
		m.checkVar(t.Var)
		m.obj[t.Var] += t.Coef
	}
}

func (m *Model) checkVar(v Var) {
	if v < 0 || int(v) >= len(m.vars) {
		panic(fmt.Sprintf("solver: variable %d is not in model %q", v, m.name))
	}
}

// NumVars returns the number of variables in the model.
func (m *Model) NumVars() int {
	return len(m.vars)
}

// NumConstraints returns the number of constraints in the model.
func (m *Model) NumConstraints() int {
	return len(m.constr)
}

// VarName returns the name of variable v.
func (m *Model) VarName(v Var) string {
	return m.vars[v]
}

// ObjectiveCoef returns the objective coefficient of variable v.
func (m *Model) ObjectiveCoef(v Var) float64 {
	return m.obj[v]
}

// Constraints returns the constraints of the model.
//
// Important: the slice is a view on the model's internal structure and should
// only be used in read-only operations.
func (m *Model) Constraints() []Constraint {
	return m.constr
}

// Objective evaluates the objective function for the given assignment.
func (m *Model) Objective(values []float64) float64 {
	obj := 0.0
	for v, c := range m.obj {
		obj += c * values[v]
	}
	return obj
}

// Violations returns the constraints violated by more than tol under the
// given assignment.
func (m *Model) Violations(values []float64, tol float64) []Constraint {
	var violated []Constraint
	for _, c := range m.constr {
		lhs := 0.0
		for _, t := range c.Terms {
			lhs += t.Coef * values[t.Var]
		}
		if !satisfied(lhs, c.Sense, c.RHS, tol) {
			violated = append(violated, c)
		}
	}
	return violated
}

func satisfied(lhs float64, sense Sense, rhs float64, tol float64) bool {
	switch sense {
	case LessEq:
		return lhs <= rhs+tol
	case GreaterEq:
		return lhs >= rhs-tol
	default:
		return math.Abs(lhs-rhs) <= tol
	}
}

// Result is the outcome of solving a model.
type Result struct {
	Status    Status
	Objective float64   // objective of the best solution found
	Bound     float64   // best proven lower bound on the objective
	Values    []float64 // best solution found, nil if none
	Nodes     int       // number of branch-and-bound nodes explored
	Duration  time.Duration
}

// HasSolution returns true if the result carries an assignment.
func (r *Result) HasSolution() bool {
	return r.Values != nil
}

// Value returns the value of variable v in the best solution found.
func (r *Result) Value(v Var) float64 {
	return r.Values[v]
}

// Gap returns the relative gap between the objective and the bound.
func (r *Result) Gap() float64 {
	if !r.HasSolution() {
		return math.Inf(1)
	}
	return relativeGap(r.Objective, r.Bound)
}

func relativeGap(obj float64, bound float64) float64 {
	d := obj - bound
	if d <= 0 {
		return 0
	}
	return d / math.Max(math.Abs(obj), 1e-10)
}

// Solver solves models. Implementations must not retain the model after Solve
// returns.
type Solver interface {
	Solve(ctx context.Context, m *Model) (*Result, error)
}
