package sim

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

type Control []float64

func (c Control) Clone() Control {
	out := make(Control, len(c))
	copy(out, c)
	return out
}

// Shape is the input, state and output dimension of a plant.
type Shape struct {
	NU, NX, NY int
}

// Plant is a stepped LTI system seen through untyped slices. Advance
// produces x(n+1) in State and y(n) in Output.
type Plant interface {
	Shape() Shape
	Dt() float64
	SetInput(u Control) error
	Advance()
	Input() Control
	State() State
	Output() State
	Reset()
}

// Controller produces the next input from the current state and the most
// recent output.
type Controller interface {
	Compute(x, y State, t float64) Control
}

type Metric interface {
	Name() string
	Observe(x State, u Control, y State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Control, y State, t float64)
}

type Config struct {
	Steps         int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Steps: 100,
	}
}

// Result holds one run. Times and States have StepsTaken+1 entries, the
// first being the initial condition. Inputs and Outputs have StepsTaken
// entries; Outputs[i] is y at Times[i]. A run stopped by ValidateState
// keeps the diverging step, so its last state is the first invalid one.
type Result struct {
	Times      []float64
	States     []State
	Inputs     []Control
	Outputs    []State
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}
