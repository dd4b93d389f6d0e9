package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrInfeasiblePeriod is matched by InfeasiblePeriodError.
	ErrInfeasiblePeriod = errors.New("no feasible loading for period")
	// ErrSearchSpaceTooLarge is returned before enumerating a grid larger
	// than ExhaustiveConfig.MaxCandidates.
	ErrSearchSpaceTooLarge = errors.New("search space too large")
	// ErrBackend wraps failures of the declarative model backend.
	ErrBackend = errors.New("lp backend failed")
	// ErrUnknownMethod is returned by the registry for unregistered names.
	ErrUnknownMethod = errors.New("unknown solver method")
)

// InfeasiblePeriodError identifies the first period the exhaustive search
// could not satisfy. No partial plan accompanies it.
type InfeasiblePeriodError struct {
	Period    int
	Label     string
	Evaluated int
}

func (e *InfeasiblePeriodError) Error() string {
	return fmt.Sprintf("%s %d (%s) after %d candidates", ErrInfeasiblePeriod, e.Period, e.Label, e.Evaluated)
}

func (e *InfeasiblePeriodError) Unwrap() error { return ErrInfeasiblePeriod }
