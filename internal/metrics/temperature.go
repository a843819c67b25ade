package metrics

import (
	"math"

	"github.com/san-kum/cylheat/internal/heat"
)

// MeanTemperature reports the grid-average temperature of the last
// observed step.
type MeanTemperature struct {
	name  string
	value float64
}

func NewMeanTemperature() *MeanTemperature {
	return &MeanTemperature{name: "mean_temperature"}
}

func (m *MeanTemperature) Name() string { return m.name }

func (m *MeanTemperature) Observe(f *heat.Field, step int) {
	m.value = f.Mean()
}

func (m *MeanTemperature) Value() float64 { return m.value }
func (m *MeanTemperature) Reset()         { m.value = 0 }

// PeakChange tracks the largest single-step change in mean temperature.
type PeakChange struct {
	name     string
	prev     float64
	peak     float64
	observed bool
}

func NewPeakChange() *PeakChange {
	return &PeakChange{name: "peak_mean_change"}
}

func (p *PeakChange) Name() string { return p.name }

func (p *PeakChange) Observe(f *heat.Field, step int) {
	mean := f.Mean()
	if p.observed {
		p.peak = math.Max(p.peak, math.Abs(mean-p.prev))
	}
	p.prev = mean
	p.observed = true
}

func (p *PeakChange) Value() float64 { return p.peak }

func (p *PeakChange) Reset() {
	p.prev, p.peak = 0, 0
	p.observed = false
}
