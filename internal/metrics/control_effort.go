package metrics

import (
	"math"

	"github.com/san-kum/ltisim/internal/sim"
)

// ControlEffort accumulates |u| per input channel. Value is the sum of the
// per-channel means, i.e. the mean L1 norm of the applied input.
type ControlEffort struct {
	channels []float64
	steps    int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(x sim.State, u sim.Control, y sim.State, t float64) {
	if len(c.channels) < len(u) {
		c.channels = append(c.channels, make([]float64, len(u)-len(c.channels))...)
	}
	for i, v := range u {
		c.channels[i] += math.Abs(v)
	}
	c.steps++
}

// PerChannel returns the mean |u_i| of every channel seen so far.
func (c *ControlEffort) PerChannel() []float64 {
	out := make([]float64, len(c.channels))
	if c.steps == 0 {
		return out
	}
	for i, s := range c.channels {
		out[i] = s / float64(c.steps)
	}
	return out
}

func (c *ControlEffort) Value() float64 {
	var total float64
	for _, m := range c.PerChannel() {
		total += m
	}
	return total
}

func (c *ControlEffort) Reset() {
	c.channels = c.channels[:0]
	c.steps = 0
}
