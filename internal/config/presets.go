package config

import "sort"

var Presets = map[string]*Config{
	"first_order": DefaultConfig(),
	"first_order_f32": {
		Name: "first_order_f32", Precision: "float32", Dt: 0.1, Steps: 50,
		A: [][]float64{{-1}}, B: [][]float64{{1}}, C: [][]float64{{1}}, D: [][]float64{{0}},
		X0:    []float64{0.1017},
		Input: InputConfig{Kind: "step", Value: []float64{1}},
	},
	"first_order_pid": {
		Name: "first_order_pid", Precision: "float64", Dt: 0.05, Steps: 400,
		A: [][]float64{{-0.5}}, B: [][]float64{{1}}, C: [][]float64{{1}}, D: [][]float64{{0}},
		InputBounds: Bounds{Lower: []float64{-3}, Upper: []float64{3}},
		Input:       InputConfig{Kind: "pid", Kp: 2, Ki: 1, Target: 1},
	},
	"mass_spring_damper": {
		Name: "mass_spring_damper", Precision: "float64", Dt: 0.01, Steps: 1000,
		A: [][]float64{{0, 1}, {-4, -0.8}}, B: [][]float64{{0}, {1}},
		C: [][]float64{{1, 0}}, D: [][]float64{{0}},
		Input: InputConfig{Kind: "step", Value: []float64{1}},
	},
	"dc_motor": {
		Name: "dc_motor", Precision: "float64", Dt: 0.001, Steps: 3000,
		A: [][]float64{{-2, -0.02}, {1, -10}}, B: [][]float64{{2}, {0}},
		C: [][]float64{{1, 0}, {0, 1}}, D: [][]float64{{0}, {0}},
		InputBounds: Bounds{Lower: []float64{-24}, Upper: []float64{24}},
		Input:       InputConfig{Kind: "step", Value: []float64{12}},
	},
	"double_integrator_lqr": {
		Name: "double_integrator_lqr", Precision: "float64", Dt: 0.01, Steps: 1500,
		A: [][]float64{{0, 1}, {0, 0}}, B: [][]float64{{0}, {1}},
		C: [][]float64{{1, 0}, {0, 1}}, D: [][]float64{{0}, {0}},
		X0:          []float64{1, 0},
		InputBounds: Bounds{Lower: []float64{-0.5}, Upper: []float64{0.5}},
		Input:       InputConfig{Kind: "lqr", Gain: [][]float64{{1, 1.732}}, StateTarget: []float64{0, 0}},
	},
	"coupled_tanks": {
		Name: "coupled_tanks", Precision: "float64", Dt: 0.05, Steps: 600,
		A: [][]float64{{-0.5, 0}, {0.5, -0.25}}, B: [][]float64{{1}, {0}},
		C: [][]float64{{0, 1}}, D: [][]float64{{0}},
		StateBounds: Bounds{Lower: []float64{0, 0}, Upper: []float64{2, 2}},
		Input:       InputConfig{Kind: "step", Value: []float64{1}},
	},
	"oscillator": {
		Name: "oscillator", Precision: "float64", Dt: 0.01, Steps: 2000,
		A: [][]float64{{0, 1}, {-1, 0}}, C: [][]float64{{1, 0}},
		X0:    []float64{1, 0},
		Input: InputConfig{Kind: "none"},
	},
	"sine_response": {
		Name: "sine_response", Precision: "float64", Dt: 0.01, Steps: 2048,
		A: [][]float64{{0, 1}, {-4, -0.8}}, B: [][]float64{{0}, {1}},
		C: [][]float64{{1, 0}}, D: [][]float64{{0}},
		Input: InputConfig{Kind: "sine", Amplitude: 1, Frequency: 0.5},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
