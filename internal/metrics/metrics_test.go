package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/cylheat/internal/heat"
)

func uniform(v float64) *heat.Field {
	f := heat.NewField(5, 5)
	f.Fill(v)
	return f
}

func TestMeanTemperature(t *testing.T) {
	m := NewMeanTemperature()
	m.Observe(uniform(20), 2)
	m.Observe(uniform(30), 3)

	if m.Value() != 30 {
		t.Errorf("expected last mean 30, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestPeakChange(t *testing.T) {
	p := NewPeakChange()
	p.Observe(uniform(10), 2)
	if p.Value() != 0 {
		t.Errorf("single observation should give 0, got %f", p.Value())
	}
	p.Observe(uniform(14), 3)
	p.Observe(uniform(15), 4)
	if math.Abs(p.Value()-4) > 1e-12 {
		t.Errorf("expected peak 4, got %f", p.Value())
	}
}

func TestBounded(t *testing.T) {
	b := NewBounded(heat.Boundary{Initial: 50, Inner: 100, Outer: 20, Bottom: 100, Top: 40})

	if b.Value() != 1.0 {
		t.Errorf("no samples should give 1.0, got %f", b.Value())
	}

	b.Observe(uniform(60), 2)
	hot := uniform(60)
	hot.Set(2, 2, 120)
	b.Observe(hot, 3)

	if b.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", b.Value())
	}
}
