// Package analysis characterizes how a run approaches steady state.
//
// The per-step max change of an explicit diffusion run decays roughly
// geometrically once the fastest modes have died out, so log10 of the
// change is close to linear in the step index:
//
//   - [FitConvergence]: least-squares fit of log10(max change) vs step
//   - [ConvergenceFit.StepsToTolerance]: extrapolated step at which the
//     change drops below a tolerance
//   - [DiffusionNumbers]: alpha*dt/dr² and alpha*dt/dz² of a setup
//
// # Example
//
//	fit, err := analysis.FitConvergence(res.History, 100)
//	if err == nil {
//	    step, ok := fit.StepsToTolerance(1e-6)
//	}
package analysis
