// Package control provides input sources for LTI plants.
//
// Controllers implement the [sim.Controller] interface to compute the plant
// input from the current state, the latest output and the time:
//
//   - [None]: zero input (free response)
//   - [Step]: constant input switched on at a given time
//   - [Sine]: sinusoidal input for frequency-response checks
//   - [PID]: Proportional-Integral-Derivative on the first output
//   - [LQR]: static state feedback u = -K(x - target) with offline gains
//
// # Usage
//
//	pid := control.NewPID(1.0, 0.1, 0.01, 1.0, 1) // Kp, Ki, Kd, setpoint, input dim
//	s := sim.New(plant, pid)
//	// Compute is called once per step
//
// Controllers implementing GetParams/SetParam support live tuning.
package control
