package solver

import "fmt"

// Status is the terminal state of a solve.
type Status int8

const (
	StatusUnknown Status = iota

	// StatusOptimal means that the best solution was found and proven optimal
	// (within the configured relative gap).
	StatusOptimal

	// StatusInfeasible means that no assignment satisfies the constraints.
	StatusInfeasible

	// StatusInfeasibleOrUnbounded means that the solver could not tell
	// whether the model is infeasible or unbounded.
	StatusInfeasibleOrUnbounded

	// StatusUnbounded means that the objective can decrease indefinitely.
	StatusUnbounded

	// StatusTimeLimit means that the time budget was exhausted. The result
	// may carry an unproven solution.
	StatusTimeLimit

	// StatusNodeLimit means that the node budget was exhausted. The result
	// may carry an unproven solution.
	StatusNodeLimit

	// StatusInterrupted means that the context was cancelled. The result may
	// carry an unproven solution.
	StatusInterrupted
)

var statusNames = map[Status]string{
	StatusUnknown:               "unknown",
	StatusOptimal:               "optimal",
	StatusInfeasible:            "infeasible",
	StatusInfeasibleOrUnbounded: "infeasible_or_unbounded",
	StatusUnbounded:             "unbounded",
	StatusTimeLimit:             "time_limit",
	StatusNodeLimit:             "node_limit",
	StatusInterrupted:           "interrupted",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int8(s))
}

// Limited returns true if the solve stopped on a budget or a cancellation
// rather than on a proof.
func (s Status) Limited() bool {
	return s == StatusTimeLimit || s == StatusNodeLimit || s == StatusInterrupted
}
