package viz

import (
	"github.com/san-kum/cylheat/internal/heat"
)

// surfaceHeight is the half-height of the temperature axis relative to
// the unit half-width of the r and z axes.
const surfaceHeight = 0.7

// SurfaceWireframe maps the field to a grid of edges: z along X, r along
// Z and temperature along Y, each normalised to [-1, 1].
func SurfaceWireframe(f *heat.Field, mesh *heat.Mesh) *Wireframe {
	nr, nz := f.Dims()
	lo, hi, _ := f.FiniteRange()

	norm := func(v, a, b float64) float64 {
		if b == a {
			return 0
		}
		return 2*(v-a)/(b-a) - 1
	}
	point := func(i, j int) Vec3 {
		return Vec3{
			X: norm(mesh.Z[j], mesh.Z[0], mesh.Z[nz-1]),
			Y: height(f.At(i, j), lo, hi),
			Z: norm(mesh.R[i], mesh.R[0], mesh.R[nr-1]),
		}
	}

	w := NewWireframe()
	for i := 0; i < nr; i++ {
		for j := 0; j < nz; j++ {
			p := point(i, j)
			if i+1 < nr {
				w.AddEdge(p, point(i+1, j))
			}
			if j+1 < nz {
				w.AddEdge(p, point(i, j+1))
			}
		}
	}
	return w
}

// height places a temperature on the vertical axis; non-finite values
// clamp to the ends of the finite range.
func height(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return (2*heat.Normalize(v, lo, hi) - 1) * surfaceHeight
}

// SurfaceCanvas renders the field as a 3D wireframe onto a w x h canvas.
func SurfaceCanvas(f *heat.Field, mesh *heat.Mesh, cam *Camera, w, h int) *Canvas {
	if cam == nil {
		cam = NewCamera()
	}
	c := NewCanvas(w, h)
	Render3D(c, SurfaceWireframe(f, mesh), cam)
	return c
}

// Surface is SurfaceCanvas rendered to text.
func Surface(f *heat.Field, mesh *heat.Mesh, cam *Camera, w, h int) string {
	return SurfaceCanvas(f, mesh, cam, w, h).String()
}
