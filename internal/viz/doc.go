// Package viz renders runs in the terminal.
//
//   - [PlotSeries], [PlotOutputs]: asciigraph line charts of recorded runs
//   - [Canvas]: Braille pixel canvas used for phase traces
//   - [Live]: Bubble Tea model that steps a plant in real time
//   - [Picker]: preset menu that opens a [Live] view
//
// # Key Bindings
//
//	Space - Pause/Resume
//	S     - Single step while paused
//	R     - Reset plant and controller
//	Tab   - Cycle controller parameters
//	↑/↓   - Adjust selected parameter (±5%)
//	Q     - Quit
package viz
