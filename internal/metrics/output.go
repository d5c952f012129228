package metrics

import (
	"math"

	"github.com/san-kum/ltisim/internal/sim"
)

// Peak is the largest |y_i| seen over the run.
type Peak struct {
	peak float64
}

func NewPeak() *Peak { return &Peak{} }

func (p *Peak) Name() string { return "peak_output" }

func (p *Peak) Observe(x sim.State, u sim.Control, y sim.State, t float64) {
	for _, v := range y {
		p.peak = math.Max(p.peak, math.Abs(v))
	}
}

func (p *Peak) Value() float64 { return p.peak }
func (p *Peak) Reset()         { p.peak = 0 }

// Final is the last observed y[0].
type Final struct {
	last float64
}

func NewFinal() *Final { return &Final{} }

func (f *Final) Name() string { return "final_output" }

func (f *Final) Observe(x sim.State, u sim.Control, y sim.State, t float64) {
	if len(y) > 0 {
		f.last = y[0]
	}
}

func (f *Final) Value() float64 { return f.last }
func (f *Final) Reset()         { f.last = 0 }

// TrackingError is the integral of |target - y[0]| over time (IAE).
type TrackingError struct {
	target float64
	dt     float64
	sum    float64
}

func NewTrackingError(target, dt float64) *TrackingError {
	return &TrackingError{target: target, dt: dt}
}

func (e *TrackingError) Name() string { return "tracking_error" }

func (e *TrackingError) Observe(x sim.State, u sim.Control, y sim.State, t float64) {
	if len(y) == 0 {
		return
	}
	e.sum += math.Abs(e.target-y[0]) * e.dt
}

func (e *TrackingError) Value() float64 { return e.sum }
func (e *TrackingError) Reset()         { e.sum = 0 }
