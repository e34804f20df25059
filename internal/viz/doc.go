// Package viz draws vessels and paths in the terminal.
//
// [Canvas] is a braille dot grid and [Viewport] maps metres onto it.
// [Model] is a Bubble Tea program that steps a simulator live; [Menu] picks
// the scenario first.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset vessel and gains
//	Tab   - Select gain, ↑/↓ to scale it by 5%
//	+/-   - Steps per frame
//	G     - Toggle GIF recording
//	?     - Help overlay
package viz
