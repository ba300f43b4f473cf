// Package viz draws a running disk in the terminal with Bubble Tea.
//
// Particles are projected onto a Braille [Canvas] (2x4 dots per cell) next
// to a stats panel and an asciigraph of the mean radius.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Regenerate the disk from its seed
//	+/-   - Zoom
//	x/X   - Tilt toward / away from edge-on
//	y/Y   - Spin about the disk axis
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
