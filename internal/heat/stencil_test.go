package heat

import (
	"math"
	"testing"
)

func TestSecondDerivative4_Polynomial(t *testing.T) {
	// exact for polynomials up to degree 5; x^4 has d2 = 12 x^2
	h := 0.1
	x := 0.7
	f := func(x float64) float64 { return x * x * x * x }
	got := SecondDerivative4(f(x-2*h), f(x-h), f(x), f(x+h), f(x+2*h), 12*h*h)
	want := 12 * x * x
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSweep_MinimumGridTouchesOneNode(t *testing.T) {
	src := NewField(5, 5)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			src.Set(i, j, float64(i*i+3*j))
		}
	}
	dst := NewField(5, 5)
	dst.Fill(-999)

	n, err := Sweep(dst, src, NewCoefficients(1e-3, 1, 0.1, 0.1))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("updated %d nodes, want 1", n)
	}
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			touched := dst.At(i, j) != -999
			if touched != (i == 2 && j == 2) {
				t.Errorf("node (%d,%d) touched=%v", i, j, touched)
			}
		}
	}
}

func TestSweep_FlatProfileIsNoOp(t *testing.T) {
	src := NewField(9, 9)
	for i := 0; i < 9; i++ {
		for j := 0; j < 9; j++ {
			src.Set(i, j, float64(i*9+j))
		}
	}
	for i := 2; i <= 6; i++ {
		for j := 2; j <= 6; j++ {
			src.Set(i, j, 7)
		}
	}
	dst := src.Clone()

	if _, err := Sweep(dst, src, NewCoefficients(0.01, 0.5, 0.05, 0.05)); err != nil {
		t.Fatal(err)
	}
	if got := dst.At(4, 4); got != 7 {
		t.Errorf("flat node changed to %v", got)
	}
}

func TestSweep_ReadsOnlySource(t *testing.T) {
	src := NewField(7, 7)
	ApplyBoundaries(src, Boundary{Initial: 0, Inner: 100, Outer: 0, Bottom: 0, Top: 0})
	before := src.Clone()
	dst := src.Clone()

	if _, err := Sweep(dst, src, NewCoefficients(0.01, 1, 0.1, 0.1)); err != nil {
		t.Fatal(err)
	}
	if d, _ := MaxAbsDiff(src, before); d != 0 {
		t.Errorf("source modified by sweep, max diff %v", d)
	}
}

func TestSweep_ShapeMismatch(t *testing.T) {
	if _, err := Sweep(NewField(5, 5), NewField(6, 5), Coefficients{}); err == nil {
		t.Error("expected error for mismatched shapes")
	}
}

func TestSweep_QuadraticValues(t *testing.T) {
	// T = a*i² + b*j² has d²T/dr² = 2a/dr² and d²T/dz² = 2b/dz², which the
	// five-point stencil reproduces exactly.
	const (
		a, b   = 1.5, 4.0
		alpha  = 2e-3
		dt     = 0.25
		dr, dz = 0.01, 0.05
	)
	nr, nz := 7, 8
	src := NewField(nr, nz)
	for i := 0; i < nr; i++ {
		for j := 0; j < nz; j++ {
			src.Set(i, j, a*float64(i*i)+b*float64(j*j))
		}
	}
	dst := src.Clone()

	if _, err := Sweep(dst, src, NewCoefficients(alpha, dt, dr, dz)); err != nil {
		t.Fatal(err)
	}

	inc := alpha * dt * (2*a/(dr*dr) + 2*b/(dz*dz))
	for i := StencilMargin; i < nr-StencilMargin; i++ {
		for j := StencilMargin; j < nz-StencilMargin; j++ {
			want := src.At(i, j) + inc
			if got := dst.At(i, j); math.Abs(got-want) > 1e-9*math.Abs(want) {
				t.Errorf("node (%d,%d) = %v, want %v", i, j, got, want)
			}
		}
	}
}
