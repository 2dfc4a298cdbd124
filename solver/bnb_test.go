package solver_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/rhartert/survivable-routing/solver"
)

// BranchAndBoundSuite exercises the branch-and-bound solver on small models
// whose optimum is known.
type BranchAndBoundSuite struct {
	suite.Suite
	bb *solver.BranchAndBound
}

func (s *BranchAndBoundSuite) SetupTest() {
	bb, err := solver.NewBranchAndBound(solver.DefaultConfig())
	require.NoError(s.T(), err)
	s.bb = bb
}

func (s *BranchAndBoundSuite) solve(m *solver.Model) *solver.Result {
	res, err := s.bb.Solve(context.Background(), m)
	require.NoError(s.T(), err)
	return res
}

// TestKnapsack verifies a maximization written with negative costs.
func (s *BranchAndBoundSuite) TestKnapsack() {
	m := solver.NewModel("knapsack")
	x1, x2, x3 := m.AddBinary("x1"), m.AddBinary("x2"), m.AddBinary("x3")
	m.SetObjective([]solver.Term{{x1, -5}, {x2, -4}, {x3, -3}})
	m.AddConstraint("weight", []solver.Term{{x1, 2}, {x2, 3}, {x3, 1}}, solver.LessEq, 5)

	res := s.solve(m)

	require.Equal(s.T(), solver.StatusOptimal, res.Status)
	require.InDelta(s.T(), -9.0, res.Objective, 1e-9)
	require.Equal(s.T(), []float64{1, 1, 0}, res.Values)
	require.Empty(s.T(), m.Violations(res.Values, 1e-9))
}

// TestBranching verifies that a fractional relaxation is branched on.
func (s *BranchAndBoundSuite) TestBranching() {
	m := solver.NewModel("half")
	x1, x2 := m.AddBinary("x1"), m.AddBinary("x2")
	m.SetObjective([]solver.Term{{x1, -1}, {x2, -1}})
	m.AddConstraint("cap", []solver.Term{{x1, 2}, {x2, 2}}, solver.LessEq, 3)

	res := s.solve(m)

	require.Equal(s.T(), solver.StatusOptimal, res.Status)
	require.InDelta(s.T(), -1.0, res.Objective, 1e-9)
	require.Greater(s.T(), res.Nodes, 1)
	require.InDelta(s.T(), 1.0, res.Value(x1)+res.Value(x2), 1e-9)
}

// TestEquality verifies equality constraints.
func (s *BranchAndBoundSuite) TestEquality() {
	m := solver.NewModel("choose-one")
	x1, x2 := m.AddBinary("x1"), m.AddBinary("x2")
	m.SetObjective([]solver.Term{{x1, 2}, {x2, 3}})
	m.AddConstraint("one", []solver.Term{{x1, 1}, {x2, 1}}, solver.Equal, 1)

	res := s.solve(m)

	require.Equal(s.T(), solver.StatusOptimal, res.Status)
	require.Equal(s.T(), []float64{1, 0}, res.Values)
	require.InDelta(s.T(), 2.0, res.Objective, 1e-9)
}

// TestShortestPathFlow verifies a flow model whose conservation constraints
// are linearly dependent (they sum to zero).
func (s *BranchAndBoundSuite) TestShortestPathFlow() {
	// Triangle 0-1-2 with distances 0-1: 2, 1-2: 2, 0-2: 5.
	type arc struct{ from, to int }
	arcs := []arc{{0, 1}, {1, 0}, {1, 2}, {2, 1}, {0, 2}, {2, 0}}
	dist := []float64{2, 2, 2, 2, 5, 5}

	m := solver.NewModel("shortest-path")
	vars := make([]solver.Var, len(arcs))
	obj := make([]solver.Term, len(arcs))
	for i := range arcs {
		vars[i] = m.AddBinary("x")
		obj[i] = solver.Term{Var: vars[i], Coef: dist[i]}
	}
	m.SetObjective(obj)
	supply := []float64{-1, 0, 1}
	for n := 0; n < 3; n++ {
		var terms []solver.Term
		for i, a := range arcs {
			if a.to == n {
				terms = append(terms, solver.Term{Var: vars[i], Coef: 1})
			}
			if a.from == n {
				terms = append(terms, solver.Term{Var: vars[i], Coef: -1})
			}
		}
		m.AddConstraint("flow", terms, solver.Equal, supply[n])
	}

	res := s.solve(m)

	require.Equal(s.T(), solver.StatusOptimal, res.Status)
	require.InDelta(s.T(), 4.0, res.Objective, 1e-9)
	require.Equal(s.T(), []float64{1, 0, 1, 0, 0, 0}, res.Values)
}

// TestInfeasible verifies that an infeasible model yields no solution.
func (s *BranchAndBoundSuite) TestInfeasible() {
	m := solver.NewModel("infeasible")
	x1, x2 := m.AddBinary("x1"), m.AddBinary("x2")
	m.AddConstraint("too-much", []solver.Term{{x1, 1}, {x2, 1}}, solver.GreaterEq, 3)

	res := s.solve(m)

	require.Equal(s.T(), solver.StatusInfeasible, res.Status)
	require.False(s.T(), res.HasSolution())
}

// TestInfeasibleAfterBranching verifies a model whose relaxation is feasible
// but which has no binary solution.
func (s *BranchAndBoundSuite) TestInfeasibleAfterBranching() {
	m := solver.NewModel("parity")
	x1, x2 := m.AddBinary("x1"), m.AddBinary("x2")
	m.AddConstraint("half", []solver.Term{{x1, 2}, {x2, 2}}, solver.Equal, 1)

	res := s.solve(m)

	require.Equal(s.T(), solver.StatusInfeasible, res.Status)
	require.False(s.T(), res.HasSolution())
}

// TestUnconstrainedVariables verifies variables that appear in no constraint.
func (s *BranchAndBoundSuite) TestUnconstrainedVariables() {
	m := solver.NewModel("free")
	x1, x2 := m.AddBinary("x1"), m.AddBinary("x2")
	m.SetObjective([]solver.Term{{x1, -2}, {x2, 3}})

	res := s.solve(m)

	require.Equal(s.T(), solver.StatusOptimal, res.Status)
	require.Equal(s.T(), []float64{1, 0}, res.Values)
	require.InDelta(s.T(), -2.0, res.Objective, 1e-9)
}

// TestUpBranches verifies a model whose only feasible assignment lies under
// the up-branch of two nested branchings: the root relaxation is (0.5, 0.5),
// the child x=1 is fractional again on y and only y=1 is feasible below it.
func (s *BranchAndBoundSuite) TestUpBranches() {
	m := solver.NewModel("up")
	x, y := m.AddBinary("x"), m.AddBinary("y")
	m.SetObjective([]solver.Term{{x, 1}, {y, 1}})
	m.AddConstraint("cover_x", []solver.Term{{x, 2}}, solver.GreaterEq, 1)
	m.AddConstraint("cover_y", []solver.Term{{y, 2}}, solver.GreaterEq, 1)

	res := s.solve(m)

	require.Equal(s.T(), solver.StatusOptimal, res.Status)
	require.InDelta(s.T(), 2.0, res.Objective, 1e-9)
	require.Equal(s.T(), []float64{1, 1}, res.Values)
	require.GreaterOrEqual(s.T(), res.Nodes, 3)
}

// TestManyBranchings verifies that every child survives a long search in
// which nodes are popped and pushed many times.
func (s *BranchAndBoundSuite) TestManyBranchings() {
	const n = 6
	m := solver.NewModel("chain")
	vars := make([]solver.Var, n)
	obj := make([]solver.Term, n)
	for i := range vars {
		vars[i] = m.AddBinary(fmt.Sprintf("x%d", i))
		obj[i] = solver.Term{Var: vars[i], Coef: float64(i + 1)}
		m.AddConstraint(fmt.Sprintf("cover_%d", i), []solver.Term{{vars[i], 2}}, solver.GreaterEq, 1)
	}
	m.SetObjective(obj)

	res := s.solve(m)

	require.Equal(s.T(), solver.StatusOptimal, res.Status)
	require.InDelta(s.T(), float64(n*(n+1)/2), res.Objective, 1e-9)
	require.Equal(s.T(), []float64{1, 1, 1, 1, 1, 1}, res.Values)
	require.Empty(s.T(), m.Violations(res.Values, 1e-9))
}

// TestCancellingTerms verifies that terms on the same variable are summed.
func (s *BranchAndBoundSuite) TestCancellingTerms() {
	m := solver.NewModel("cancel")
	x1, x2 := m.AddBinary("x1"), m.AddBinary("x2")
	m.SetObjective([]solver.Term{{x1, 1}, {x2, 1}})
	m.AddConstraint("c", []solver.Term{{x1, 1}, {x1, -1}, {x2, 1}}, solver.GreaterEq, 1)

	res := s.solve(m)

	require.Equal(s.T(), solver.StatusOptimal, res.Status)
	require.Equal(s.T(), []float64{0, 1}, res.Values)
}

// TestEmptyModel verifies that a model without variables is trivially optimal.
func (s *BranchAndBoundSuite) TestEmptyModel() {
	res := s.solve(solver.NewModel("empty"))

	require.Equal(s.T(), solver.StatusOptimal, res.Status)
	require.True(s.T(), res.HasSolution())
	require.Zero(s.T(), res.Objective)
}

func TestBranchAndBoundSuite(t *testing.T) {
	suite.Run(t, new(BranchAndBoundSuite))
}

func halfModel() *solver.Model {
	m := solver.NewModel("half")
	x1, x2 := m.AddBinary("x1"), m.AddBinary("x2")
	m.SetObjective([]solver.Term{{x1, -1}, {x2, -1}})
	m.AddConstraint("cap", []solver.Term{{x1, 2}, {x2, 2}}, solver.LessEq, 3)
	return m
}

func TestBranchAndBound_nodeLimit(t *testing.T) {
	bb, err := solver.NewBranchAndBound(solver.Config{NodeLimit: 1})
	require.NoError(t, err)

	res, err := bb.Solve(context.Background(), halfModel())

	require.NoError(t, err)
	require.Equal(t, solver.StatusNodeLimit, res.Status)
	require.True(t, res.Status.Limited())
	require.False(t, res.HasSolution())
	require.Equal(t, 1, res.Nodes)
}

func TestBranchAndBound_cancelled(t *testing.T) {
	bb, err := solver.NewBranchAndBound(solver.DefaultConfig())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := bb.Solve(ctx, halfModel())

	require.NoError(t, err)
	require.Equal(t, solver.StatusInterrupted, res.Status)
	require.Zero(t, res.Nodes)
}

func TestNewBranchAndBound_invalidConfig(t *testing.T) {
	testCases := []struct {
		desc string
		cfg  solver.Config
	}{
		{"negative time limit", solver.Config{TimeLimit: -1}},
		{"negative node limit", solver.Config{NodeLimit: -1}},
		{"negative gap", solver.Config{RelativeGap: -0.1}},
		{"tolerance too large", solver.Config{Tolerance: 0.5}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := solver.NewBranchAndBound(tc.cfg)
			require.Error(t, err)
		})
	}
}
