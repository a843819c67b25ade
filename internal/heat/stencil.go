package heat

// StencilMargin is the number of cells on each side that the five-point
// stencil needs; nodes closer than this to an edge are never updated.
const StencilMargin = 2

// MinPoints is the smallest grid dimension with a non-empty interior.
const MinPoints = 2*StencilMargin + 1

// Coefficients are the per-run constants of the update.
type Coefficients struct {
	AlphaDt float64 // alpha * dt
	Dr2     float64 // 12 * dr^2
	Dz2     float64 // 12 * dz^2
}

func NewCoefficients(alpha, dt, dr, dz float64) Coefficients {
	return Coefficients{
		AlphaDt: alpha * dt,
		Dr2:     12 * dr * dr,
		Dz2:     12 * dz * dz,
	}
}

// SecondDerivative4 is the fourth-order centered approximation of d²T/dx²
// on five equally spaced samples, scaled by denom = 12·Δx².
func SecondDerivative4(m2, m1, c, p1, p2, denom float64) float64 {
	return (-p2 + 16*p1 - 30*c + 16*m1 - m2) / denom
}

// Sweep computes one explicit step from src into dst for every node with
// i in [2, Nr-3] and j in [2, Nz-3]. src is only read; nodes outside that
// range are left untouched in dst. It returns the number of nodes written.
func Sweep(dst, src *Field, c Coefficients) (int, error) {
	if !sameShape(dst, src) {
		return 0, ErrDimensionMismatch
	}
	nr, nz := src.Dims()
	updated := 0

	for i := StencilMargin; i < nr-StencilMargin; i++ {
		rm2, rm1 := src.row(i-2), src.row(i-1)
		rc := src.row(i)
		rp1, rp2 := src.row(i+1), src.row(i+2)
		out := dst.row(i)

		for j := StencilMargin; j < nz-StencilMargin; j++ {
			lapR := SecondDerivative4(rm2[j], rm1[j], rc[j], rp1[j], rp2[j], c.Dr2)
			lapZ := SecondDerivative4(rc[j-2], rc[j-1], rc[j], rc[j+1], rc[j+2], c.Dz2)
			out[j] = rc[j] + c.AlphaDt*(lapR+lapZ)
			updated++
		}
	}
	return updated, nil
}
