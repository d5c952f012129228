package experiment

import (
	"errors"
	"fmt"
	"slices"

	"github.com/san-kum/ltisim/internal/config"
	"github.com/san-kum/ltisim/internal/control"
	"github.com/san-kum/ltisim/internal/metrics"
	"github.com/san-kum/ltisim/internal/sim"
)

var ErrUnknownController = errors.New("experiment: unknown input kind")

// StabilityThreshold bounds |y| for the stability metric.
const StabilityThreshold = 1e3

type controllerFactory func(in config.InputConfig, shape sim.Shape) sim.Controller

type Registry struct {
	controllers map[string]controllerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]controllerFactory),
	}

	r.controllers["none"] = func(in config.InputConfig, shape sim.Shape) sim.Controller {
		return control.NewNone(shape.NU)
	}
	r.controllers["step"] = func(in config.InputConfig, shape sim.Shape) sim.Controller {
		value := in.Value
		if len(value) == 0 {
			value = make([]float64, shape.NU)
		}
		return control.NewStep(value, in.At)
	}
	r.controllers["sine"] = func(in config.InputConfig, shape sim.Shape) sim.Controller {
		return control.NewSine(in.Amplitude, in.Frequency, in.Offset, shape.NU)
	}
	r.controllers["pid"] = func(in config.InputConfig, shape sim.Shape) sim.Controller {
		return control.NewPID(in.Kp, in.Ki, in.Kd, in.Target, shape.NU)
	}
	r.controllers["lqr"] = func(in config.InputConfig, shape sim.Shape) sim.Controller {
		return control.NewLQR(in.Gain, in.StateTarget)
	}

	return r
}

// GetController builds the input source named by in.Kind. An empty kind
// means no input.
func (r *Registry) GetController(in config.InputConfig, shape sim.Shape) (sim.Controller, error) {
	kind := in.Kind
	if kind == "" {
		kind = "none"
	}
	fn, ok := r.controllers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownController, kind)
	}
	return fn(in, shape), nil
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) DefaultMetrics(cfg *config.Config) []sim.Metric {
	ms := []sim.Metric{
		metrics.NewControlEffort(),
		metrics.NewStability(StabilityThreshold),
		metrics.NewPeak(),
		metrics.NewFinal(),
	}
	if cfg.Input.Kind == "pid" {
		ms = append(ms, metrics.NewTrackingError(cfg.Input.Target, cfg.Dt))
	}
	return ms
}
