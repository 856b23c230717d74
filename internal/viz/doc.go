// Package viz provides the live terminal view of a growing network.
//
// The view is a Bubble Tea program that draws the planform on a
// Braille [Canvas]: active channels bright, abandoned channels dim,
// oxbow lakes fading with age and the sea boundary as a vertical line.
// A side panel shows counters and a chart of the live channel count.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to the configured seed
//	+/-   - Change ticks per frame
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
