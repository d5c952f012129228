// Package statespace simulates linear time-invariant systems in state-space
// form, one forward-Euler step at a time:
//
//	x'(t) = A x(t) + B u(t)
//	y(t)  = C x(t) + D u(t)
//
// The package is meant for embedding in control loops where A, B, C and D
// were designed offline. It defines:
//
//   - [Scalar]: the element types the engine runs on (float32, float64)
//   - [Dim]: dimension marker types used as type parameters
//   - [Vector], [Matrix]: fixed-shape values backed by gonum BLAS
//   - [BoundedVector]: a vector with per-component lower/upper limits
//   - [Model]: the A, B, C, D system with bounded u, x, y and a step dt
//
// Shapes are part of the type. A Matrix[float64, D2, D3] cannot be passed
// where the model expects a Matrix[float64, D2, D2], so dimension mismatches
// are rejected by the compiler rather than at run time.
//
// # Example
//
//	sys := statespace.New[float64, statespace.D1, statespace.D1, statespace.D1]()
//	sys.SetA(statespace.NewMatrix[float64, statespace.D1, statespace.D1](-1)).
//		SetB(statespace.NewMatrix[float64, statespace.D1, statespace.D1](1)).
//		SetC(statespace.NewMatrix[float64, statespace.D1, statespace.D1](1)).
//		SetDt(0.1)
//	sys.SetU(statespace.BoundedFromScalar[float64, statespace.D1](1))
//	for i := 0; i < 10; i++ {
//		sys.Advance()
//		fmt.Println(sys.Y().Slice())
//	}
//
// # Output timing
//
// Advance evaluates the output equation with the state and input captured at
// the start of the step. After a call, X holds x(n+1) while Y holds y(n): the
// output lags the state by one step.
//
// # Thread Safety
//
// Model and BoundedVector carry no locks. Each instance must be owned by a
// single control loop; use Clone to hand an independent copy elsewhere.
package statespace
