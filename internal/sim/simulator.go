package sim

import (
	"context"
	"fmt"
	"log/slog"
)

type Simulator struct {
	plant      Plant
	controller Controller
	metrics    []Metric
	observers  []Observer
	logger     *slog.Logger
}

func New(plant Plant, controller Controller) *Simulator {
	return &Simulator{
		plant:      plant,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     slog.New(slog.DiscardHandler),
	}
}

func (s *Simulator) AddMetric(m Metric)           { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)       { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(logger *slog.Logger) { s.logger = logger }

// Run advances the plant cfg.Steps times from its current state. The
// controller sees the output of the previous step, so a closed loop carries
// one step of output delay.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Times:   make([]float64, 0, cfg.Steps+1),
		States:  make([]State, 0, cfg.Steps+1),
		Inputs:  make([]Control, 0, cfg.Steps),
		Outputs: make([]State, 0, cfg.Steps),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	dt := s.plant.Dt()
	x := s.plant.State()
	y := s.plant.Output()
	t := 0.0

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	s.logger.Debug("run started", "steps", cfg.Steps, "dt", dt, "shape", s.plant.Shape())

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
		default:
		}

		u := s.controller.Compute(x, y, t)
		if err := s.plant.SetInput(u); err != nil {
			return result, &SimError{Step: i, Time: t, Wrapped: err}
		}
		s.plant.Advance()

		u = s.plant.Input()
		y = s.plant.Output()

		for _, m := range s.metrics {
			m.Observe(x, u, y, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, y, t)
		}

		result.Inputs = append(result.Inputs, u)
		result.Outputs = append(result.Outputs, y.Clone())

		x = s.plant.State()
		t = float64(i+1) * dt

		result.StepsTaken++
		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)

		if cfg.ValidateState && (!x.IsValid() || !y.IsValid()) {
			err := &SimError{Step: i, Time: t, Wrapped: ErrInvalidState}
			result.Errors = append(result.Errors, err)
			s.logger.Warn("run diverged", "step", i, "t", t)
			break
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Debug("run finished", "steps_taken", result.StepsTaken, "errors", len(result.Errors))

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if dt := s.plant.Dt(); !(dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, dt)
	}
	return nil
}

// RunWithCallback steps the plant until the callback returns false or the
// step budget is spent. The callback sees the state before each step and the
// output that step produced.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(x State, u Control, y State, t float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	dt := s.plant.Dt()
	x := s.plant.State()
	y := s.plant.Output()

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
		default:
		}

		t := float64(i) * dt
		if err := s.plant.SetInput(s.controller.Compute(x, y, t)); err != nil {
			return &SimError{Step: i, Time: t, Wrapped: err}
		}
		s.plant.Advance()
		y = s.plant.Output()

		if !callback(x, s.plant.Input(), y, t) {
			return nil
		}

		x = s.plant.State()
		if cfg.ValidateState && !x.IsValid() {
			return &SimError{Step: i, Time: t + dt, Wrapped: ErrInvalidState}
		}
	}

	return nil
}
