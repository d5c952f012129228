package control

import "github.com/san-kum/ltisim/internal/sim"

// PID tracks Target on y[0] and drives input channel 0; the other channels
// stay at zero. The first call after construction or Reset is pure
// proportional action.
type PID struct {
	Kp, Ki, Kd float64
	Target     float64

	channels int
	integral float64
	last     *pidSample
}

type pidSample struct {
	err, t float64
}

func NewPID(kp, ki, kd, target float64, channels int) *PID {
	return &PID{Kp: kp, Ki: ki, Kd: kd, Target: target, channels: max(channels, 1)}
}

func (p *PID) Compute(x, y sim.State, t float64) sim.Control {
	u := make(sim.Control, p.channels)
	if len(y) == 0 {
		return u
	}

	e := p.Target - y[0]
	u[0] = p.Kp * e

	if p.last != nil {
		if h := t - p.last.t; h > 0 {
			p.integral += e * h
			u[0] += p.Ki*p.integral + p.Kd*(e-p.last.err)/h
		} else {
			return u
		}
	}
	p.last = &pidSample{err: e, t: t}
	return u
}

func (p *PID) Reset() {
	p.integral = 0
	p.last = nil
}

func (p *PID) gains() map[string]*float64 {
	return map[string]*float64{"Kp": &p.Kp, "Ki": &p.Ki, "Kd": &p.Kd, "Target": &p.Target}
}

func (p *PID) GetParams() map[string]float64 {
	out := make(map[string]float64, 4)
	for name, v := range p.gains() {
		out[name] = *v
	}
	return out
}

// SetParam ignores unknown names.
func (p *PID) SetParam(name string, value float64) {
	if v, ok := p.gains()[name]; ok {
		*v = value
	}
}
