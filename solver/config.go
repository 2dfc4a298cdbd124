package solver

import (
	"fmt"
	"log/slog"
	"time"
)

type Config struct {
	// TimeLimit bounds the wall-clock time spent in Solve. When the limit is
	// reached, the best solution found so far (if any) is returned with
	// StatusTimeLimit. Zero means no limit. A deadline on the context passed
	// to Solve is honored as well.
	TimeLimit time.Duration

	// NodeLimit bounds the number of branch-and-bound nodes explored. It also
	// bounds the number of open nodes kept in memory. Zero means the default
	// of 100000 nodes.
	NodeLimit int

	// RelativeGap stops the search as soon as the relative difference between
	// the best solution and the best bound, (obj - bound) / |obj|, is at most
	// RelativeGap. Zero requires a proof of optimality.
	RelativeGap float64

	// Tolerance is the feasibility and integrality tolerance. A variable whose
	// value is within Tolerance of 0 or 1 is considered integral. Zero means
	// the default of 1e-6.
	Tolerance float64

	// Logger receives progress messages. Nil silences the solver.
	Logger *slog.Logger
}

const (
	defaultNodeLimit = 100000
	defaultTolerance = 1e-6
)

// DefaultConfig returns the configuration used by NewBranchAndBound when no
// option is set: no time limit, exact optimality and a silent logger.
func DefaultConfig() Config {
	return Config{
		NodeLimit: defaultNodeLimit,
		Tolerance: defaultTolerance,
	}
}

// Validate returns an error if the configuration is invalid.
func (c Config) Validate() error {
	if c.TimeLimit < 0 {
		return fmt.Errorf("time limit must be non-negative, got %v", c.TimeLimit)
	}
	if c.NodeLimit < 0 {
		return fmt.Errorf("node limit must be non-negative, got %d", c.NodeLimit)
	}
	if c.RelativeGap < 0 {
		return fmt.Errorf("relative gap must be non-negative, got %v", c.RelativeGap)
	}
	if c.Tolerance < 0 || c.Tolerance >= 0.5 {
		return fmt.Errorf("tolerance must be in [0, 0.5), got %v", c.Tolerance)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.NodeLimit == 0 {
		c.NodeLimit = defaultNodeLimit
	}
	if c.Tolerance == 0 {
		c.Tolerance = defaultTolerance
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}
