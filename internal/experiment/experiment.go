package experiment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/san-kum/ltisim/internal/config"
	"github.com/san-kum/ltisim/internal/plant"
	"github.com/san-kum/ltisim/internal/sim"
)

var ErrNotSetup = errors.New("experiment: not setup")

// Experiment is one configured system ready to run: a plant built from the
// file, its input source and the default metrics.
type Experiment struct {
	cfg        *config.Config
	registry   *Registry
	plant      sim.Plant
	controller sim.Controller
	simulator  *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
	}
}

func (e *Experiment) Setup(logger *slog.Logger) error {
	p, err := plant.Build(e.cfg)
	if err != nil {
		return err
	}

	controller, err := e.registry.GetController(e.cfg.Input, p.Shape())
	if err != nil {
		return err
	}

	e.plant = p
	e.controller = controller
	e.simulator = sim.New(p, controller)
	for _, m := range e.registry.DefaultMetrics(e.cfg) {
		e.simulator.AddMetric(m)
	}
	if logger != nil {
		e.simulator.SetLogger(logger)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, ErrNotSetup
	}
	return e.simulator.Run(ctx, e.SimConfig())
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Steps:         e.cfg.Steps,
		ValidateState: e.cfg.ValidateState,
	}
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Plant() sim.Plant { return e.plant }

func (e *Experiment) Controller() sim.Controller { return e.controller }

// ControllerName is the input kind recorded with a saved run.
func (e *Experiment) ControllerName() string {
	if e.cfg.Input.Kind == "" {
		return "none"
	}
	return e.cfg.Input.Kind
}
