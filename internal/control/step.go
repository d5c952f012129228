package control

import (
	"math"

	"github.com/san-kum/ltisim/internal/sim"
)

// Step holds zero input until At, then Value.
type Step struct {
	Value sim.Control
	At    float64
}

func NewStep(value sim.Control, at float64) *Step {
	return &Step{Value: value.Clone(), At: at}
}

func (s *Step) Compute(x, y sim.State, t float64) sim.Control {
	if t < s.At {
		return make(sim.Control, len(s.Value))
	}
	return s.Value.Clone()
}

// Sine drives every input channel with Offset + Amplitude*sin(2*pi*Frequency*t).
type Sine struct {
	Amplitude float64
	Frequency float64
	Offset    float64
	dim       int
}

func NewSine(amplitude, frequency, offset float64, dim int) *Sine {
	return &Sine{Amplitude: amplitude, Frequency: frequency, Offset: offset, dim: dim}
}

func (s *Sine) Compute(x, y sim.State, t float64) sim.Control {
	u := make(sim.Control, s.dim)
	v := s.Offset + s.Amplitude*math.Sin(2*math.Pi*s.Frequency*t)
	for i := range u {
		u[i] = v
	}
	return u
}
