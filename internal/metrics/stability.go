package metrics

import (
	"math"

	"github.com/san-kum/ltisim/internal/sim"
)

// Stability is the fraction of steps whose output stays finite with every
// component inside ±threshold. It also records when the first excursion
// happened.
type Stability struct {
	threshold float64
	inside    int
	steps     int
	firstOut  float64
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold, firstOut: math.Inf(1)}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x sim.State, u sim.Control, y sim.State, t float64) {
	s.steps++
	if y.IsValid() && maxAbs(y) <= s.threshold {
		s.inside++
		return
	}
	s.firstOut = math.Min(s.firstOut, t)
}

// FirstExcursion is the time of the first step outside the band, or +Inf.
func (s *Stability) FirstExcursion() float64 { return s.firstOut }

func (s *Stability) Value() float64 {
	if s.steps == 0 {
		return 1
	}
	return float64(s.inside) / float64(s.steps)
}

func (s *Stability) Reset() {
	s.inside, s.steps = 0, 0
	s.firstOut = math.Inf(1)
}

func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		m = math.Max(m, math.Abs(x))
	}
	return m
}
