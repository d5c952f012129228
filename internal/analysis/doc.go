// Package analysis inspects recorded trajectories.
//
//   - [PowerSpectrum], [DominantFrequency]: frequency content of an output
//     series (go-dsp FFT, any length)
//   - [StepResponse]: rise time, overshoot and settling time of a step run
//   - [NewPhasePortrait]: two state components plotted against each other
//
// All functions work on plain series read back from storage, so they can be
// applied to old runs without rebuilding the plant.
package analysis
