package solver

import (
	"errors"
	"fmt"

	"github.com/rhartert/sparsesets"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Fixing states of a variable in a branch-and-bound node.
const (
	unfixed int8 = -1
	fixed0  int8 = 0
	fixed1  int8 = 1
)

// simplexTol is the reduced cost tolerance passed to lp.Simplex.
const simplexTol = 1e-10

type lpOutcome int8

const (
	lpOptimal lpOutcome = iota
	lpInfeasible
	lpUnbounded
)

// lpRow is a constraint restricted to the unfixed variables of a node. Sense
// is either LessEq or GreaterEq: equalities are split in two rows.
type lpRow struct {
	cols  []int
	coefs []float64
	sense Sense
	rhs   float64
}

// relaxation solves the linear relaxation of a model in which some binary
// variables are fixed to 0 or 1.
//
// Fixed variables are substituted in the constraints before the relaxation is
// converted to the standard form expected by lp.Simplex:
//
//	minimize cᵀx  s.t.  Ax = b, x >= 0
//
// Each row receives its own slack column (+1 for <=, -1 for >=) so that A
// always has full row rank, even when the model contains redundant equalities
// such as the flow conservation constraints of all the nodes of a graph.
// Unfixed variables are only bounded by 1 when their objective coefficient is
// negative, which is enough to keep the relaxation bounded. Values above 1 are
// handled by branching like fractional values.
type relaxation struct {
	model *Model
	tol   float64

	// Constraints in which each variable has a non-zero coefficient.
	occurs [][]int

	// Unfixed variables of the current node that appear in at least one row,
	// and their column in the standard form.
	active *sparsesets.Set
	colOf  []int

	scratch []float64 // per-variable coefficient accumulator
}

func newRelaxation(m *Model, tol float64) *relaxation {
	n := m.NumVars()
	r := &relaxation{
		model:   m,
		tol:     tol,
		occurs:  make([][]int, n),
		active:  sparsesets.New(max(n, 1)),
		colOf:   make([]int, n),
		scratch: make([]float64, n),
	}
	for i, c := range m.constr {
		for _, t := range c.Terms {
			if t.Coef != 0 {
				r.occurs[t.Var] = append(r.occurs[t.Var], i)
			}
		}
	}
	return r
}

// solve returns the outcome of the relaxation of the node defined by fix, its
// optimal objective (a lower bound for the node) and an optimal assignment of
// all the model's variables.
func (r *relaxation) solve(fix []int8) (lpOutcome, float64, []float64, error) {
	m := r.model
	n := m.NumVars()
	values := make([]float64, n)
	offset := 0.0

	// Fixed variables contribute to the objective offset. Unfixed variables
	// that appear in no constraint are set to their best value directly.
	r.active.Clear()
	for v := 0; v < n; v++ {
		switch {
		case fix[v] == fixed1:
			values[v] = 1
			offset += m.obj[v]
		case fix[v] == fixed0:
		case len(r.occurs[v]) == 0:
			if m.obj[v] < 0 {
				values[v] = 1
				offset += m.obj[v]
			}
		default:
			r.active.Insert(v)
		}
	}

	rows, ok := r.rows(values)
	if !ok {
		return lpInfeasible, 0, nil, nil
	}

	// Drop variables whose coefficients all cancelled out.
	used := make([]bool, n)
	for _, row := range rows {
		for _, c := range row.cols {
			used[c] = true
		}
	}
	cols := make([]int, 0, len(r.active.Content()))
	for _, v := range r.active.Content() {
		if !used[v] {
			if m.obj[v] < 0 {
				values[v] = 1
				offset += m.obj[v]
			}
			continue
		}
		r.colOf[v] = len(cols)
		cols = append(cols, v)
	}
	if len(cols) == 0 {
		return lpOptimal, offset, values, nil
	}

	// Bound the variables that the objective would otherwise push to +Inf.
	for _, v := range cols {
		if m.obj[v] < 0 {
			rows = append(rows, lpRow{
				cols:  []int{v},
				coefs: []float64{1},
				sense: LessEq,
				rhs:   1,
			})
		}
	}

	nRows := len(rows)
	nCols := len(cols) + nRows
	A := mat.NewDense(nRows, nCols, nil)
	b := make([]float64, nRows)
	c := make([]float64, nCols)
	for j, v := range cols {
		c[j] = m.obj[v]
	}
	for i, row := range rows {
		sign := 1.0
		if row.rhs < 0 {
			sign = -1
		}
		for k, v := range row.cols {
			A.Set(i, r.colOf[v], sign*row.coefs[k])
		}
		slack := 1.0
		if row.sense == GreaterEq {
			slack = -1
		}
		A.Set(i, len(cols)+i, sign*slack)
		b[i] = sign * row.rhs
	}

	opt, x, err := lp.Simplex(c, A, b, simplexTol, nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return lpInfeasible, 0, nil, nil
	case errors.Is(err, lp.ErrUnbounded):
		return lpUnbounded, 0, nil, nil
	case err != nil:
		return 0, 0, nil, fmt.Errorf("linear relaxation of %q (%d rows, %d columns): %w", m.name, nRows, nCols, err)
	}

	for j, v := range cols {
		values[v] = max(x[j], 0)
	}
	return lpOptimal, opt + offset, values, nil
}

// rows returns the constraints of the model restricted to the active
// variables, given the values of the fixed ones. The second returned value is
// false if a constraint without active variables is violated.
func (r *relaxation) rows(values []float64) ([]lpRow, bool) {
	m := r.model
	rows := make([]lpRow, 0, len(m.constr))

	for _, con := range m.constr {
		rhs := con.RHS
		var cols []int
		for _, t := range con.Terms {
			if !r.active.Contains(int(t.Var)) {
				rhs -= t.Coef * values[t.Var]
				continue
			}
			if r.scratch[t.Var] == 0 {
				cols = append(cols, int(t.Var))
			}
			r.scratch[t.Var] += t.Coef
		}

		row := lpRow{rhs: rhs}
		for _, v := range cols {
			if coef := r.scratch[v]; coef != 0 {
				row.cols = append(row.cols, v)
				row.coefs = append(row.coefs, coef)
			}
			r.scratch[v] = 0
		}

		if len(row.cols) == 0 {
			if !satisfied(0, con.Sense, rhs, r.tol) {
				return nil, false
			}
			continue
		}

		switch con.Sense {
		case Equal:
			le := row
			le.sense = LessEq
			ge := row
			ge.sense = GreaterEq
			rows = append(rows, le, ge)
		default:
			row.sense = con.Sense
			rows = append(rows, row)
		}
	}

	return rows, true
}
