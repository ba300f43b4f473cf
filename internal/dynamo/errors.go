package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrNegativeCount indicates a request to generate fewer than zero particles.
	ErrNegativeCount = errors.New("dynamo: particle count must be non-negative")

	// ErrNegativeDt indicates a step with a negative time delta.
	ErrNegativeDt = errors.New("dynamo: time step must be non-negative")

	// ErrInvalidState indicates a particle with a NaN or Inf component.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrLengthChanged indicates the collection length changed between steps.
	ErrLengthChanged = errors.New("dynamo: particle collection length changed")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// BoundsError reports which parameter was rejected and why.
func BoundsError(name string, value float64, want string) error {
	return fmt.Errorf("%w: %s=%g, want %s", ErrParameterBounds, name, value, want)
}
