package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/rhartert/yagh"
)

// BranchAndBound is an exact solver for models over binary variables.
//
// The search is best-first: open nodes are kept in a heap ordered by the bound
// inherited from their parent, so the node popped from the heap always holds
// the best bound of the whole search. Each node solves the linear relaxation
// of the model with its fixings (see relaxation) and either:
//
//   - is pruned, if the relaxation is infeasible or its bound is not better
//     than the incumbent,
//   - becomes the new incumbent, if the relaxation is integral,
//   - is split in two children by fixing its most fractional variable to 1
//     and to 0.
//
// The search stops when the heap is empty (the incumbent is optimal), when the
// popped bound proves the incumbent within the relative gap, or when a budget
// is exhausted.
type BranchAndBound struct {
	cfg Config
}

// NewBranchAndBound returns a new branch-and-bound solver with the given
// configuration.
func NewBranchAndBound(cfg Config) (*BranchAndBound, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &BranchAndBound{cfg: cfg.withDefaults()}, nil
}

// bbNode is an open node of the search tree.
type bbNode struct {
	fix   []int8
	bound float64
	depth int
}

// bbSearch holds the state of one call to Solve.
type bbSearch struct {
	cfg   Config
	model *Model
	relax *relaxation
	log   *slog.Logger

	// Open nodes are stored in slots. The heap maps slot indexes to the
	// nodes' bound. Slot indexes are never reused: the heap keeps the
	// position of popped elements, so putting a popped index again would
	// update a stale entry instead of inserting the node.
	open  *yagh.IntMap[float64]
	slots []bbNode

	incumbent []float64
	incObj    float64
	nodes     int
}

// Solve solves the model. Infeasibility and budget exhaustion are reported
// through the result's status; errors are only returned when the linear
// relaxation cannot be solved or an open node cannot be queued.
func (bb *BranchAndBound) Solve(ctx context.Context, m *Model) (*Result, error) {
	start := time.Now()
	if bb.cfg.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bb.cfg.TimeLimit)
		defer cancel()
	}

	s := &bbSearch{
		cfg:    bb.cfg,
		model:  m,
		relax:  newRelaxation(m, bb.cfg.Tolerance),
		log:    bb.cfg.Logger.With(slog.String("model", m.Name())),
		open:   yagh.New[float64](maxOpenNodes(bb.cfg.NodeLimit)),
		slots:  make([]bbNode, 0, 64),
		incObj: math.Inf(1),
	}

	root := make([]int8, m.NumVars())
	for i := range root {
		root[i] = unfixed
	}
	if err := s.push(bbNode{fix: root, bound: math.Inf(-1)}); err != nil {
		return nil, err
	}

	res, err := s.run(ctx)
	if err != nil {
		return nil, err
	}
	res.Duration = time.Since(start)

	s.log.Debug("search done",
		slog.String("status", res.Status.String()),
		slog.Float64("objective", res.Objective),
		slog.Float64("bound", res.Bound),
		slog.Int("nodes", res.Nodes),
		slog.Duration("elapsed", res.Duration),
	)
	return res, nil
}

func (s *bbSearch) run(ctx context.Context) (*Result, error) {
	for s.open.Size() > 0 {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return s.stop(StatusTimeLimit), nil
			}
			return s.stop(StatusInterrupted), nil
		}
		if s.nodes >= s.cfg.NodeLimit {
			return s.stop(StatusNodeLimit), nil
		}

		nd := s.pop()

		// Best-first: no open node has a better bound than nd.
		if s.incumbent != nil && s.proven(nd.bound) {
			return s.result(StatusOptimal, nd.bound), nil
		}

		s.nodes++
		outcome, bound, values, err := s.relax.solve(nd.fix)
		if err != nil {
			return nil, err
		}

		switch outcome {
		case lpInfeasible:
			continue
		case lpUnbounded:
			// Bounded variables cannot yield an unbounded relaxation unless
			// the model itself is malformed.
			return &Result{Status: StatusUnbounded, Bound: math.Inf(-1), Nodes: s.nodes}, nil
		}

		if s.incumbent != nil && bound >= s.incObj-s.cfg.Tolerance {
			continue
		}

		j := s.branchingVar(values)
		if j == -1 {
			s.improve(values, nd.depth)
			continue
		}

		up := slices.Clone(nd.fix)
		up[j] = fixed1
		down := nd.fix // the parent's fixings are not used anymore
		down[j] = fixed0
		if err := s.push(bbNode{fix: up, bound: bound, depth: nd.depth + 1}); err != nil {
			return nil, err
		}
		if err := s.push(bbNode{fix: down, bound: bound, depth: nd.depth + 1}); err != nil {
			return nil, err
		}
	}

	if s.incumbent == nil {
		return &Result{Status: StatusInfeasible, Bound: math.Inf(1), Nodes: s.nodes}, nil
	}
	return s.result(StatusOptimal, s.incObj), nil
}

// proven returns true if bound proves the incumbent optimal within the
// configured gap.
func (s *bbSearch) proven(bound float64) bool {
	if bound >= s.incObj-s.cfg.Tolerance {
		return true
	}
	return s.cfg.RelativeGap > 0 && relativeGap(s.incObj, bound) <= s.cfg.RelativeGap
}

// branchingVar returns the variable whose value is the farthest from being
// binary, or -1 if all the values are binary. Ties are broken by smallest
// index.
func (s *bbSearch) branchingVar(values []float64) int {
	best := -1
	bestScore := 0.0
	for v, x := range values {
		if x <= s.cfg.Tolerance || math.Abs(x-1) <= s.cfg.Tolerance {
			continue
		}
		score := 0.5 // values above 1 are always worth branching on
		if x < 1 {
			score = min(x, 1-x)
		}
		if score > bestScore {
			best = v
			bestScore = score
		}
	}
	return best
}

// improve rounds the integral assignment and keeps it if it is better than
// the incumbent.
func (s *bbSearch) improve(values []float64, depth int) {
	for v, x := range values {
		values[v] = math.Round(x)
	}
	obj := s.model.Objective(values)
	if obj >= s.incObj {
		return
	}
	s.incumbent = values
	s.incObj = obj
	s.log.Debug("new incumbent",
		slog.Float64("objective", obj),
		slog.Int("node", s.nodes),
		slog.Int("depth", depth),
	)
}

// stop returns the result of a search interrupted before its end.
func (s *bbSearch) stop(status Status) *Result {
	bound := s.incObj
	if e := s.open.Min(); e != nil {
		bound = min(bound, e.Cost)
	}
	if s.incumbent != nil && s.proven(bound) {
		status = StatusOptimal
	}
	s.log.Info("search stopped", slog.String("status", status.String()), slog.Int("nodes", s.nodes))
	return s.result(status, bound)
}

func (s *bbSearch) result(status Status, bound float64) *Result {
	res := &Result{
		Status: status,
		Bound:  bound,
		Nodes:  s.nodes,
	}
	if s.incumbent != nil {
		res.Values = s.incumbent
		res.Objective = s.incObj
		res.Bound = min(bound, s.incObj)
	}
	return res
}

// maxOpenNodes returns the number of nodes pushed by a search that processes
// at most nodeLimit nodes: the root and two children per processed node.
func maxOpenNodes(nodeLimit int) int {
	return 2*nodeLimit + 1
}

func (s *bbSearch) push(nd bbNode) error {
	i := len(s.slots)
	if i >= maxOpenNodes(s.cfg.NodeLimit) {
		return fmt.Errorf("branch-and-bound: more than %d nodes pushed", i)
	}
	s.slots = append(s.slots, nd)
	if !s.open.Put(i, nd.bound) {
		return fmt.Errorf("branch-and-bound: node %d already queued", i)
	}
	return nil
}

func (s *bbSearch) pop() bbNode {
	e := s.open.Pop()
	nd := s.slots[e.Elem]
	s.slots[e.Elem] = bbNode{} // release the fixings
	return nd
}
