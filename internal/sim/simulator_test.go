package sim

import (
	"context"
	"errors"
	"math"
	"testing"
)

var errBadInput = errors.New("bad input")

// lagPlant is x' = a*x + u, y = x, stepped with forward Euler.
type lagPlant struct {
	a, dt float64
	x0    float64
	x, y  float64
	u     float64
}

func newLagPlant(a, dt, x0 float64) *lagPlant {
	return &lagPlant{a: a, dt: dt, x0: x0, x: x0}
}

func (p *lagPlant) Shape() Shape { return Shape{NU: 1, NX: 1, NY: 1} }
func (p *lagPlant) Dt() float64  { return p.dt }

func (p *lagPlant) SetInput(u Control) error {
	if len(u) != 1 {
		return errBadInput
	}
	p.u = u[0]
	return nil
}

func (p *lagPlant) Advance() {
	x0 := p.x
	p.x = x0 + p.dt*(p.a*x0+p.u)
	p.y = x0
}

func (p *lagPlant) Input() Control { return Control{p.u} }
func (p *lagPlant) State() State   { return State{p.x} }
func (p *lagPlant) Output() State  { return State{p.y} }
func (p *lagPlant) Reset()         { p.x, p.y, p.u = p.x0, 0, 0 }

type constController struct{ u Control }

func (c *constController) Compute(x, y State, t float64) Control { return c.u }

func TestSimulatorRun(t *testing.T) {
	plant := newLagPlant(-1, 0.1, 0)
	s := New(plant, &constController{u: Control{1}})

	result, err := s.Run(context.Background(), Config{Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if len(result.Outputs) != 10 || len(result.Inputs) != 10 {
		t.Errorf("expected 10 outputs and inputs, got %d and %d", len(result.Outputs), len(result.Inputs))
	}

	if math.Abs(result.States[1][0]-0.1) > 1e-12 {
		t.Errorf("x1 = %f, want 0.1", result.States[1][0])
	}
	if result.Outputs[0][0] != 0 {
		t.Errorf("y0 = %f, want 0", result.Outputs[0][0])
	}
	if math.Abs(result.Outputs[1][0]-0.1) > 1e-12 {
		t.Errorf("y1 = %f, want 0.1", result.Outputs[1][0])
	}
	if math.Abs(result.Times[10]-1.0) > 1e-12 {
		t.Errorf("final time = %f, want 1.0", result.Times[10])
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps taken, got %d", result.StepsTaken)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		dt    float64
		steps int
	}{
		{"zero steps", 0.1, 0},
		{"negative steps", 0.1, -5},
		{"zero dt", 0, 10},
		{"negative dt", -0.1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(newLagPlant(-1, tt.dt, 0), &constController{u: Control{1}})
			_, err := s.Run(context.Background(), Config{Steps: tt.steps})
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(x State, u Control, y State, time float64) {
	t.count++
	t.sum += y[0]
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	s := New(newLagPlant(-1, 0.1, 0), &constController{u: Control{1}})

	metric := &testMetric{}
	s.AddMetric(metric)

	result, err := s.Run(context.Background(), Config{Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
}

type countingObserver struct{ steps int }

func (o *countingObserver) OnStep(x State, u Control, y State, t float64) { o.steps++ }

func TestSimulatorObservers(t *testing.T) {
	s := New(newLagPlant(-1, 0.1, 0), &constController{u: Control{1}})
	obs := &countingObserver{}
	s.AddObserver(obs)

	if _, err := s.Run(context.Background(), Config{Steps: 7}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if obs.steps != 7 {
		t.Errorf("expected 7 callbacks, got %d", obs.steps)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(newLagPlant(-1, 0.1, 0), &constController{u: Control{1}})
	result, err := s.Run(ctx, Config{Steps: 10})
	if !errors.Is(err, ErrCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps, got %d", result.StepsTaken)
	}
}

func TestSimulatorBadInput(t *testing.T) {
	s := New(newLagPlant(-1, 0.1, 0), &constController{u: Control{1, 2}})

	_, err := s.Run(context.Background(), Config{Steps: 3})
	var simErr *SimError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimError, got %v", err)
	}
	if simErr.Step != 0 || !errors.Is(err, errBadInput) {
		t.Errorf("unexpected error %v", err)
	}
}

func TestSimulatorValidateState(t *testing.T) {
	s := New(newLagPlant(1e300, 1, 1), &constController{u: Control{0}})

	result, err := s.Run(context.Background(), Config{Steps: 50, ValidateState: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], ErrInvalidState) {
		t.Fatalf("expected one invalid state error, got %v", result.Errors)
	}
	if result.StepsTaken != 2 {
		t.Fatalf("expected the run to stop after the diverging step 2, got %d", result.StepsTaken)
	}

	n := result.StepsTaken
	if len(result.Times) != n+1 || len(result.States) != n+1 {
		t.Errorf("expected %d times and states, got %d and %d", n+1, len(result.Times), len(result.States))
	}
	if len(result.Inputs) != n || len(result.Outputs) != n {
		t.Errorf("expected %d inputs and outputs, got %d and %d", n, len(result.Inputs), len(result.Outputs))
	}
	if last := result.States[n]; last.IsValid() {
		t.Errorf("last recorded state should be the diverging one, got %v", last)
	}
}

func TestSimulatorRejectsNaNDt(t *testing.T) {
	s := New(newLagPlant(-1, math.NaN(), 0), &constController{u: Control{1}})

	if _, err := s.Run(context.Background(), Config{Steps: 5}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for NaN dt, got %v", err)
	}
}

func TestRunWithCallback(t *testing.T) {
	s := New(newLagPlant(-1, 0.1, 0), &constController{u: Control{1}})

	calls := 0
	err := s.RunWithCallback(context.Background(), Config{Steps: 100}, func(x State, u Control, y State, t float64) bool {
		calls++
		return calls < 5
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if calls != 5 {
		t.Errorf("expected 5 callbacks, got %d", calls)
	}
}

func TestEnsemble(t *testing.T) {
	gains := []float64{0.5, 1, 2, 4}
	ens := NewEnsemble(len(gains), func(idx int) (*Simulator, error) {
		return New(newLagPlant(-1, 0.1, 0), &constController{u: Control{gains[idx]}}), nil
	})

	results, err := ens.Run(context.Background(), Config{Steps: 200})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}

	for i, r := range results {
		final := r.Outputs[len(r.Outputs)-1][0]
		if math.Abs(final-gains[i]) > 1e-6 {
			t.Errorf("run %d settled at %f, want %f", i, final, gains[i])
		}
	}
}

func TestEnsembleBuildError(t *testing.T) {
	ens := NewEnsemble(3, func(idx int) (*Simulator, error) {
		if idx == 1 {
			return nil, errBadInput
		}
		return New(newLagPlant(-1, 0.1, 0), &constController{u: Control{1}}), nil
	})

	if _, err := ens.Run(context.Background(), Config{Steps: 5}); !errors.Is(err, errBadInput) {
		t.Errorf("expected build error, got %v", err)
	}
}
