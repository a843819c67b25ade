// Package heat solves transient radial-axial heat conduction on a hollow
// cylinder with an explicit finite-difference scheme.
//
// The package is organised around a few small pieces:
//
//   - [Mesh]: radial and axial coordinate arrays with their spacing
//   - [Field]: an Nr x Nz temperature grid backed by a gonum matrix
//   - [ApplyBoundaries]: Dirichlet values on the four mesh edges
//   - [Sweep]: one fourth-order Jacobi update of the interior nodes
//   - [Solver]: the double-buffered time loop with convergence tracking
//
// # Example
//
//	p := heat.DefaultParams()
//	res, err := heat.Solve(ctx, p)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Converged, len(res.History))
//
// # Numerical notes
//
// Only the second-derivative terms are discretized; the radial curvature
// term (1/r)·dT/dr is not part of the update. Nodes within two cells of an
// edge are outside the five-point stencil's reach and keep their
// initialized values for the whole run.
//
// Solver instances are NOT safe for concurrent use.
package heat
