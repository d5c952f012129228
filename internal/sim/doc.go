// Package sim runs a [Plant] in a loop with a [Controller] in the feedback
// path, recording every step.
//
// A plant exposes a statespace model through untyped slices. Each step the
// simulator asks the controller for u, hands it to the plant, advances once
// and records u, y(n) and x(n+1). Metrics and observers see every step.
//
// Simulator instances are NOT thread-safe. For concurrent runs use
// [Ensemble], which builds one plant per goroutine.
package sim
