package heat

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Field is a temperature grid with one value per mesh node. Row i is the
// radial index, column j the axial index.
type Field struct {
	m *mat.Dense
}

// NewField allocates a zeroed nr x nz field. Both dimensions must be
// positive.
func NewField(nr, nz int) *Field {
	return &Field{m: mat.NewDense(nr, nz, nil)}
}

// FieldFromRows builds a field from row-major data. All rows must have the
// same length.
func FieldFromRows(rows [][]float64) (*Field, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrDimensionMismatch
	}
	nz := len(rows[0])
	data := make([]float64, 0, len(rows)*nz)
	for _, row := range rows {
		if len(row) != nz {
			return nil, ErrDimensionMismatch
		}
		data = append(data, row...)
	}
	return &Field{m: mat.NewDense(len(rows), nz, data)}, nil
}

func (f *Field) Dims() (nr, nz int) { return f.m.Dims() }

func (f *Field) At(i, j int) float64     { return f.m.At(i, j) }
func (f *Field) Set(i, j int, v float64) { f.m.Set(i, j, v) }

// row exposes the backing storage of row i without copying.
func (f *Field) row(i int) []float64 { return f.m.RawRowView(i) }

// Fill sets every node to v.
func (f *Field) Fill(v float64) {
	nr, _ := f.Dims()
	for i := 0; i < nr; i++ {
		r := f.row(i)
		for j := range r {
			r[j] = v
		}
	}
}

// CopyFrom overwrites f with src. The shapes must match.
func (f *Field) CopyFrom(src *Field) error {
	if !sameShape(f, src) {
		return ErrDimensionMismatch
	}
	f.m.Copy(src.m)
	return nil
}

func (f *Field) Clone() *Field {
	return &Field{m: mat.DenseCopyOf(f.m)}
}

// Rows returns a copy of the field as nested slices.
func (f *Field) Rows() [][]float64 {
	nr, nz := f.Dims()
	out := make([][]float64, nr)
	for i := range out {
		out[i] = make([]float64, nz)
		copy(out[i], f.row(i))
	}
	return out
}

func (f *Field) Min() float64 { return mat.Min(f.m) }
func (f *Field) Max() float64 { return mat.Max(f.m) }

func (f *Field) Mean() float64 {
	nr, nz := f.Dims()
	return mat.Sum(f.m) / float64(nr*nz)
}

// IsFinite reports whether no node holds NaN or Inf.
func (f *Field) IsFinite() bool {
	nr, _ := f.Dims()
	for i := 0; i < nr; i++ {
		for _, v := range f.row(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// FiniteRange returns the min and max over the finite nodes only. ok is
// false when no node is finite.
func (f *Field) FiniteRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	nr, _ := f.Dims()
	for i := 0; i < nr; i++ {
		for _, v := range f.row(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// Normalize maps v onto [0, 1] within [lo, hi]. Values outside the range
// and +Inf clamp to the ends; NaN and -Inf map to 0. A flat range gives 0.
func Normalize(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v), v <= lo:
		return 0
	case v >= hi:
		if hi == lo {
			return 0
		}
		return 1
	}
	return (v - lo) / (hi - lo)
}

// MaxAbsDiff returns the largest pointwise |a - b| over the whole grid.
// Identical fields give exactly 0.
func MaxAbsDiff(a, b *Field) (float64, error) {
	if !sameShape(a, b) {
		return 0, ErrDimensionMismatch
	}
	nr, _ := a.Dims()
	result := 0.0
	for i := 0; i < nr; i++ {
		ra, rb := a.row(i), b.row(i)
		for j := range ra {
			result = math.Max(result, math.Abs(ra[j]-rb[j]))
		}
	}
	return result, nil
}

func sameShape(a, b *Field) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}
