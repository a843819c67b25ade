package metrics

import (
	"math"

	"github.com/san-kum/cylheat/internal/heat"
)

// Bounded is the fraction of observed steps whose field stays inside the
// envelope spanned by the boundary values and the initial guess. A
// diffusion run without sources should never leave it.
type Bounded struct {
	name       string
	lo, hi     float64
	violations int
	samples    int
}

func NewBounded(b heat.Boundary) *Bounded {
	lo := math.Min(b.Initial, math.Min(math.Min(b.Inner, b.Outer), math.Min(b.Bottom, b.Top)))
	hi := math.Max(b.Initial, math.Max(math.Max(b.Inner, b.Outer), math.Max(b.Bottom, b.Top)))
	return &Bounded{name: "bounded", lo: lo, hi: hi}
}

func (s *Bounded) Name() string { return s.name }

func (s *Bounded) Observe(f *heat.Field, step int) {
	s.samples++
	if f.Min() < s.lo || f.Max() > s.hi {
		s.violations++
	}
}

func (s *Bounded) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Bounded) Reset() {
	s.violations = 0
	s.samples = 0
}

// Default returns the metrics attached to every CLI run.
func Default(b heat.Boundary) []heat.Metric {
	return []heat.Metric{
		NewMeanTemperature(),
		NewPeakChange(),
		NewBounded(b),
	}
}
