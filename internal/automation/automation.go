// Package automation runs batches of systems: scripted scenarios,
// parameter sweeps and Monte Carlo perturbations of the initial state.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ltisim/internal/config"
	"github.com/san-kum/ltisim/internal/experiment"
	"github.com/san-kum/ltisim/internal/sim"
)

var ErrUnknownParam = errors.New("automation: unknown sweep parameter")

// Resolver turns a system reference (file path or preset name) into a
// config the caller may modify.
type Resolver func(ref string) (*config.Config, error)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides fields of the referenced system; zero values keep
// the system's own settings.
type ScenarioStep struct {
	System string              `yaml:"system"`
	Steps  int                 `yaml:"steps"`
	Dt     float64             `yaml:"dt"`
	X0     []float64           `yaml:"x0"`
	Input  *config.InputConfig `yaml:"input"`
	SaveAs string              `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// StepResult pairs one scenario step with its run.
type StepResult struct {
	Config     *config.Config
	Experiment *experiment.Experiment
	Result     *sim.Result
}

// RunScenario executes the steps in order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, resolve Resolver, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "system", step.System)

		cfg, err := resolve(step.System)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Steps > 0 {
			cfg.Steps = step.Steps
		}
		if step.Dt > 0 {
			cfg.Dt = step.Dt
		}
		if len(step.X0) > 0 {
			cfg.X0 = step.X0
		}
		if step.Input != nil {
			cfg.Input = *step.Input
		}
		if step.SaveAs != "" {
			cfg.Name = step.SaveAs
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(logger); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Config: cfg, Experiment: exp, Result: result})
	}

	return results, nil
}

// Sweep varies one scalar of a system over [Min, Max] in Num points.
type Sweep struct {
	Param string
	Min   float64
	Max   float64
	Num   int
}

type SweepResult struct {
	ParamValue  float64
	FinalOutput []float64
	Metrics     map[string]float64
}

// SweepParams lists the names accepted by Sweep.Param.
var SweepParams = []string{"dt", "kp", "ki", "kd", "target", "amplitude", "frequency", "offset", "at"}

func applyParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "dt":
		cfg.Dt = v
	case "kp":
		cfg.Input.Kp = v
	case "ki":
		cfg.Input.Ki = v
	case "kd":
		cfg.Input.Kd = v
	case "target":
		cfg.Input.Target = v
	case "amplitude":
		cfg.Input.Amplitude = v
	case "frequency":
		cfg.Input.Frequency = v
	case "offset":
		cfg.Input.Offset = v
	case "at":
		cfg.Input.At = v
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}

// RunSweep runs every sweep point concurrently. base is not modified.
func RunSweep(ctx context.Context, base *config.Config, sweep Sweep) ([]SweepResult, error) {
	if sweep.Num < 1 {
		return nil, fmt.Errorf("sweep needs at least one point, got %d", sweep.Num)
	}
	if err := applyParam(base.Clone(), sweep.Param, 0); err != nil {
		return nil, err
	}

	values := make([]float64, sweep.Num)
	for i := range values {
		if sweep.Num == 1 {
			values[i] = sweep.Min
			continue
		}
		values[i] = sweep.Min + float64(i)*(sweep.Max-sweep.Min)/float64(sweep.Num-1)
	}

	ensemble := sim.NewEnsemble(len(values), func(idx int) (*sim.Simulator, error) {
		cfg := base.Clone()
		if err := applyParam(cfg, sweep.Param, values[idx]); err != nil {
			return nil, err
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(nil); err != nil {
			return nil, err
		}
		return exp.Simulator(), nil
	})

	runs, err := ensemble.Run(ctx, sim.Config{Steps: base.Steps, ValidateState: base.ValidateState})
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(runs))
	for i, r := range runs {
		results[i] = SweepResult{ParamValue: values[i], Metrics: r.Metrics}
		if n := len(r.Outputs); n > 0 {
			results[i].FinalOutput = r.Outputs[n-1]
		}
	}
	return results, nil
}

type MonteCarloConfig struct {
	Perturbation float64
	NumTrials    int
	Seed         int64
	// Bound on |x| for a trial to count as stable.
	Bound float64
}

type MonteCarloResult struct {
	TrialID    int
	InitState  []float64
	FinalState []float64
	Stable     bool
}

// RunMonteCarlo perturbs every component of base.X0 uniformly within
// ±Perturbation and runs the trials concurrently. The same seed gives the
// same initial states.
func RunMonteCarlo(ctx context.Context, base *config.Config, mc MonteCarloConfig) ([]MonteCarloResult, error) {
	if mc.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least one trial, got %d", mc.NumTrials)
	}
	bound := mc.Bound
	if bound <= 0 {
		bound = 1e6
	}

	_, nx, _ := base.Dims()
	x0 := make([]float64, nx)
	copy(x0, base.X0)

	rng := rand.New(rand.NewSource(mc.Seed))
	inits := make([][]float64, mc.NumTrials)
	for trial := range inits {
		inits[trial] = make([]float64, nx)
		for i, v := range x0 {
			inits[trial][i] = v + (rng.Float64()-0.5)*2*mc.Perturbation
		}
	}

	ensemble := sim.NewEnsemble(mc.NumTrials, func(idx int) (*sim.Simulator, error) {
		cfg := base.Clone()
		cfg.X0 = inits[idx]
		exp := experiment.New(cfg)
		if err := exp.Setup(nil); err != nil {
			return nil, err
		}
		return exp.Simulator(), nil
	})

	runs, err := ensemble.Run(ctx, sim.Config{Steps: base.Steps, ValidateState: base.ValidateState})
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for trial, r := range runs {
		final := r.States[len(r.States)-1]
		stable := len(r.Errors) == 0
		for _, v := range final {
			if math.IsNaN(v) || math.Abs(v) > bound {
				stable = false
				break
			}
		}
		results[trial] = MonteCarloResult{
			TrialID:    trial,
			InitState:  inits[trial],
			FinalState: final,
			Stable:     stable,
		}
	}
	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
