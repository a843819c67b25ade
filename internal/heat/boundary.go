package heat

// Boundary holds the initial guess and the four Dirichlet edge values.
type Boundary struct {
	Initial float64 // every node before the edges are written
	Inner   float64 // r = r1
	Outer   float64 // r = r2
	Bottom  float64 // z = 0
	Top     float64 // z = L
}

// ApplyBoundaries resets f to the initial guess and writes the edge
// values. The z edges are written after the r edges, so the four corners
// carry Bottom/Top.
func ApplyBoundaries(f *Field, b Boundary) {
	f.Fill(b.Initial)
	nr, nz := f.Dims()

	for j := 0; j < nz; j++ {
		f.Set(0, j, b.Inner)
		f.Set(nr-1, j, b.Outer)
	}
	for i := 0; i < nr; i++ {
		f.Set(i, 0, b.Bottom)
		f.Set(i, nz-1, b.Top)
	}
}
