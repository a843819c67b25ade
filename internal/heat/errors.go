package heat

import (
	"errors"
	"fmt"
)

// Domain errors for solver operations.
var (
	// ErrGridTooSmall indicates a grid that leaves no node for the
	// five-point stencil (Nr or Nz below MinPoints).
	ErrGridTooSmall = errors.New("heat: grid too small for fourth-order stencil")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("heat: parameter out of valid bounds")

	// ErrGeometry indicates an empty or inverted radial/axial interval.
	ErrGeometry = errors.New("heat: invalid cylinder geometry")

	// ErrNonFinite indicates a NaN or Inf appeared in the field.
	ErrNonFinite = errors.New("heat: non-finite temperature in field")

	// ErrDimensionMismatch indicates fields of different shapes.
	ErrDimensionMismatch = errors.New("heat: field dimension mismatch")
)

// SolveError wraps an error with the time step it occurred at.
type SolveError struct {
	Step    int
	Wrapped error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
