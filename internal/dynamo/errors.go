package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for guidance and simulation operations.
var (
	// ErrInvalidTimestep indicates a non-positive or non-finite dt.
	ErrInvalidTimestep = errors.New("dynamo: timestep must be positive and finite")

	// ErrDegeneratePath indicates a path with fewer than two usable points.
	ErrDegeneratePath = errors.New("dynamo: path needs at least two distinct points")

	// ErrPathExhausted signals that the waypoint cursor moved past the last
	// usable index. Drivers treat it as normal termination.
	ErrPathExhausted = errors.New("dynamo: path exhausted")

	// ErrInvalidState indicates a state or command holding NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidParameter indicates a parameter value outside its valid range.
	ErrInvalidParameter = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownParameter is returned by Configurable.SetParam for names it
	// does not expose.
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.2fs): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// CheckTimestep returns ErrInvalidTimestep unless dt is positive and finite.
func CheckTimestep(dt float64) error {
	if !(dt > 0) || isInf(dt) {
		return fmt.Errorf("%w: got %v", ErrInvalidTimestep, dt)
	}
	return nil
}
