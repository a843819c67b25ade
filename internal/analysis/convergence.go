package analysis

import (
	"errors"
	"math"

	"github.com/san-kum/cylheat/internal/heat"
	"gonum.org/v1/gonum/stat"
)

var ErrTooFewPoints = errors.New("need at least two positive changes to fit")

// ConvergenceFit is log10(max change) ≈ Intercept + Slope*step.
type ConvergenceFit struct {
	Slope     float64
	Intercept float64
	RSquared  float64
	Points    int
	LastStep  int
}

// Ratio is the fitted per-step reduction factor of the max change.
func (f ConvergenceFit) Ratio() float64 { return math.Pow(10, f.Slope) }

// StepsToTolerance extrapolates the first step whose fitted change is
// below tol. ok is false when the fit does not decay or the crossing
// lies more than math.MaxInt32 steps away.
func (f ConvergenceFit) StepsToTolerance(tol float64) (step int, ok bool) {
	if f.Slope >= 0 || tol <= 0 {
		return 0, false
	}
	x := (math.Log10(tol) - f.Intercept) / f.Slope
	if math.IsNaN(x) || math.Abs(x) >= math.MaxInt32 {
		return 0, false
	}
	return int(math.Floor(x)) + 1, true
}

// FitConvergence fits the last window entries of history (all of it when
// window <= 0). Exact zeros are skipped since they have no logarithm.
func FitConvergence(history []heat.HistoryEntry, window int) (ConvergenceFit, error) {
	if window > 0 && window < len(history) {
		history = history[len(history)-window:]
	}

	xs := make([]float64, 0, len(history))
	ys := make([]float64, 0, len(history))
	for _, h := range history {
		if h.MaxChange <= 0 || math.IsInf(h.MaxChange, 0) || math.IsNaN(h.MaxChange) {
			continue
		}
		xs = append(xs, float64(h.Step))
		ys = append(ys, math.Log10(h.MaxChange))
	}
	if len(xs) < 2 {
		return ConvergenceFit{}, ErrTooFewPoints
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return ConvergenceFit{
		Slope:     beta,
		Intercept: alpha,
		RSquared:  stat.RSquared(xs, ys, nil, alpha, beta),
		Points:    len(xs),
		LastStep:  int(xs[len(xs)-1]),
	}, nil
}

// DiffusionNumbers returns alpha*dt/dr² and alpha*dt/dz² for p.
func DiffusionNumbers(p heat.Params) (radial, axial float64) {
	mesh := heat.NewMesh(p.Geometry)
	a := p.Material.Diffusivity() * p.Dt
	return a / (mesh.Dr * mesh.Dr), a / (mesh.Dz * mesh.Dz)
}
