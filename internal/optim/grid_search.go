// Package optim tunes input-source parameters by exhaustive grid search.
package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/ltisim/internal/config"
	"github.com/san-kum/ltisim/internal/experiment"
	"github.com/san-kum/ltisim/internal/sim"
)

var ErrNoCandidates = errors.New("optim: no candidate produced a finite metric")

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Candidates lists every combination of the parameter ranges.
func (g *GridSearch) Candidates() []map[string]float64 {
	var out []map[string]float64
	g.collect(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) collect(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, maps.Clone(current))
		return
	}
	if depth >= len(g.ranges) {
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := maps.Clone(current)
		next[paramName] = val
		g.collect(depth+1, next, out)
	}
}

// Search runs every candidate concurrently and returns the parameters that
// minimise metricName. Candidates whose metric is NaN are ignored.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, error) {
	candidates := g.Candidates()
	if len(candidates) == 0 {
		return nil, math.Inf(1), ErrNoCandidates
	}

	ensemble := sim.NewEnsemble(len(candidates), func(idx int) (*sim.Simulator, error) {
		exp, err := buildExperiment(candidates[idx])
		if err != nil {
			return nil, err
		}
		if err := exp.Setup(nil); err != nil {
			return nil, err
		}
		return exp.Simulator(), nil
	})

	// All candidates share one step count; the first build decides it.
	probe, err := buildExperiment(candidates[0])
	if err != nil {
		return nil, math.Inf(1), err
	}
	results, err := ensemble.Run(ctx, probe.SimConfig())
	if err != nil {
		return nil, math.Inf(1), err
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	for i, result := range results {
		val, ok := result.Metrics[metricName]
		if !ok {
			return nil, math.Inf(1), fmt.Errorf("optim: unknown metric %q", metricName)
		}
		if val < best {
			best = val
			bestParams = candidates[i]
		}
	}
	if bestParams == nil {
		return nil, best, ErrNoCandidates
	}
	return bestParams, best, nil
}

// TunePID searches PID gains for cfg, minimising the integrated tracking
// error. cfg is not modified.
func TunePID(ctx context.Context, cfg *config.Config, kp, ki, kd []float64) (map[string]float64, float64, error) {
	g := NewGridSearch([]string{"kp", "ki", "kd"}, [][]float64{kp, ki, kd})
	return g.Search(ctx, func(params map[string]float64) (*experiment.Experiment, error) {
		c := cfg.Clone()
		c.Input.Kind = "pid"
		c.Input.Kp = params["kp"]
		c.Input.Ki = params["ki"]
		c.Input.Kd = params["kd"]
		return experiment.New(c), nil
	}, "tracking_error")
}
