package heat

import (
	"fmt"
	"math"
	"time"
)

// Metric accumulates a scalar over the steps of a run.
type Metric interface {
	Name() string
	Observe(f *Field, step int)
	Value() float64
	Reset()
}

// Observer is notified after every completed step. The field must not be
// retained or modified; it is the solver's working buffer.
type Observer interface {
	OnStep(step int, f *Field, maxChange float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, f *Field, maxChange float64)

func (fn ObserverFunc) OnStep(step int, f *Field, maxChange float64) { fn(step, f, maxChange) }

// Params is everything one run needs.
type Params struct {
	Geometry  Geometry
	Material  Material
	Boundary  Boundary
	Dt        float64
	Steps     int // Nt, the step budget
	Tolerance float64

	// Snapshots lists the step indices to capture. Index 0 is the
	// boundary-initialized field.
	Snapshots []int

	ValidateField bool
}

// DefaultParams returns the reference run: a steel tube with
// r in [0.1, 0.2] m, L = 0.5 m on a 20 x 20 grid.
func DefaultParams() Params {
	p := Params{
		Geometry: Geometry{InnerRadius: 0.1, OuterRadius: 0.2, Length: 0.5, Nr: 20, Nz: 20},
		Material: Material{Density: 7800, SpecificHeat: 500, Conductivity: 50},
		Boundary: Boundary{Initial: 50, Inner: 100, Outer: 20, Bottom: 100, Top: 40},
		Dt:       0.01,
		Steps:    500,

		Tolerance:     1e-6,
		ValidateField: true,
	}
	p.Snapshots = DefaultSnapshots(p.Steps)
	return p
}

// DefaultSnapshots returns {0, n/3, 2n/3, n-1}.
func DefaultSnapshots(n int) []int {
	return []int{0, n / 3, 2 * n / 3, n - 1}
}

// Validate checks the parameters before a run.
func (p Params) Validate() error {
	g := p.Geometry
	if g.Nr < MinPoints || g.Nz < MinPoints {
		return fmt.Errorf("%w: need Nr, Nz >= %d, got %d x %d", ErrGridTooSmall, MinPoints, g.Nr, g.Nz)
	}
	if g.OuterRadius <= g.InnerRadius {
		return fmt.Errorf("%w: outer radius %g must exceed inner radius %g", ErrGeometry, g.OuterRadius, g.InnerRadius)
	}
	if g.Length <= 0 {
		return fmt.Errorf("%w: length must be positive, got %g", ErrGeometry, g.Length)
	}
	if p.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrParameterBounds, p.Dt)
	}
	// the loop runs over [StencilMargin, Steps-StencilMargin)
	if p.Steps <= 2*StencilMargin {
		return fmt.Errorf("%w: steps must exceed %d, got %d", ErrParameterBounds, 2*StencilMargin, p.Steps)
	}
	if p.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive, got %g", ErrParameterBounds, p.Tolerance)
	}
	m := p.Material
	if m.Density <= 0 || m.SpecificHeat <= 0 || m.Conductivity <= 0 {
		return fmt.Errorf("%w: material constants must be positive", ErrParameterBounds)
	}
	b := p.Boundary
	for _, v := range []float64{p.Dt, p.Tolerance, g.InnerRadius, g.OuterRadius, g.Length,
		m.Density, m.SpecificHeat, m.Conductivity, b.Initial, b.Inner, b.Outer, b.Bottom, b.Top} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: parameters must be finite", ErrParameterBounds)
		}
	}
	for _, s := range p.Snapshots {
		if s < 0 {
			return fmt.Errorf("%w: negative snapshot step %d", ErrParameterBounds, s)
		}
	}
	return nil
}

// HistoryEntry is one row of the error table.
type HistoryEntry struct {
	Step      int     `json:"step"`
	MaxChange float64 `json:"max_change"`
}

// Snapshot is the field at a requested step. Reached is false when the
// loop ended before that step and Field holds the final field instead.
type Snapshot struct {
	Step    int
	Reached bool
	Field   *Field
}

type Result struct {
	Mesh          *Mesh
	Final         *Field
	History       []HistoryEntry
	Snapshots     []Snapshot
	Metrics       map[string]float64
	Alpha         float64
	Converged     bool
	ConvergedStep int
	StepsTaken    int
	Elapsed       time.Duration
}

// LastChange returns the max change of the final step, or 0 if no step ran.
func (r *Result) LastChange() float64 {
	if len(r.History) == 0 {
		return 0
	}
	return r.History[len(r.History)-1].MaxChange
}
