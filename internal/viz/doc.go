// Package viz renders temperature fields and convergence history in the
// terminal.
//
//   - [Contour]: filled contour map, z across and r up, jet colormap
//   - [SurfaceCanvas]: 3D wireframe surface on a Braille [Canvas]
//   - [ErrorTable]: boxed table of per-step max change
//   - [HistoryPlot]: log10 max change against step
//   - [Report]: all of the above for a finished run
//   - [Viewer]: Bubble Tea program for paging through snapshots
//
// # Key Bindings (Viewer)
//
//	←/→ h/l  - Previous/next snapshot
//	V        - Cycle contour, surface and table views
//	↑/↓ w/s  - Tilt the surface
//	A/D      - Turn the surface
//	+/-      - Zoom
//	T        - Cycle color themes
//	Q        - Quit
package viz
