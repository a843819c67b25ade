package heat

import "gonum.org/v1/gonum/floats"

// Geometry describes the hollow cylinder and its discretization.
type Geometry struct {
	InnerRadius float64
	OuterRadius float64
	Length      float64
	Nr, Nz      int
}

// Material holds the constant thermal properties of the wall.
type Material struct {
	Density      float64
	SpecificHeat float64
	Conductivity float64
}

// Diffusivity returns k / (rho * cp).
func (m Material) Diffusivity() float64 {
	return m.Conductivity / (m.Density * m.SpecificHeat)
}

// Linspace returns n evenly spaced points over the closed interval
// [start, end]. n == 1 yields {start}.
func Linspace(start, end float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, end)
}

// Mesh is the (r, z) grid. It is not modified after NewMesh.
type Mesh struct {
	R, Z   []float64
	Dr, Dz float64
}

func NewMesh(g Geometry) *Mesh {
	m := &Mesh{
		R: Linspace(g.InnerRadius, g.OuterRadius, g.Nr),
		Z: Linspace(0, g.Length, g.Nz),
	}
	if g.Nr > 1 {
		m.Dr = (g.OuterRadius - g.InnerRadius) / float64(g.Nr-1)
	}
	if g.Nz > 1 {
		m.Dz = g.Length / float64(g.Nz-1)
	}
	return m
}

func (m *Mesh) Nr() int { return len(m.R) }
func (m *Mesh) Nz() int { return len(m.Z) }

// Node returns the (r, z) coordinates of grid node (i, j).
func (m *Mesh) Node(i, j int) (r, z float64) {
	return m.R[i], m.Z[j]
}
