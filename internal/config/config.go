package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt        = 0.1
	DefaultSteps     = 50
	DefaultPrecision = "float64"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid system")

// Config describes one LTI system and how to drive it. Matrices are lists
// of rows; the dimensions are read from their shapes.
type Config struct {
	Name          string      `yaml:"name"`
	Precision     string      `yaml:"precision"`
	Dt            float64     `yaml:"dt"`
	Steps         int         `yaml:"steps"`
	ValidateState bool        `yaml:"validate_state"`
	A             [][]float64 `yaml:"a"`
	B             [][]float64 `yaml:"b,omitempty"`
	C             [][]float64 `yaml:"c"`
	D             [][]float64 `yaml:"d,omitempty"`
	X0            []float64   `yaml:"x0,omitempty"`
	InputBounds   Bounds      `yaml:"input_bounds,omitempty"`
	StateBounds   Bounds      `yaml:"state_bounds,omitempty"`
	OutputBounds  Bounds      `yaml:"output_bounds,omitempty"`
	Input         InputConfig `yaml:"input"`
}

// Bounds left empty keep the default limits of ±9e99.
type Bounds struct {
	Lower []float64 `yaml:"lower,omitempty"`
	Upper []float64 `yaml:"upper,omitempty"`
}

// InputConfig selects the input source: none, step, sine, pid or lqr.
type InputConfig struct {
	Kind        string      `yaml:"kind"`
	Value       []float64   `yaml:"value,omitempty"`
	At          float64     `yaml:"at,omitempty"`
	Amplitude   float64     `yaml:"amplitude,omitempty"`
	Frequency   float64     `yaml:"frequency,omitempty"`
	Offset      float64     `yaml:"offset,omitempty"`
	Kp          float64     `yaml:"kp,omitempty"`
	Ki          float64     `yaml:"ki,omitempty"`
	Kd          float64     `yaml:"kd,omitempty"`
	Target      float64     `yaml:"target,omitempty"`
	Gain        [][]float64 `yaml:"gain,omitempty"`
	StateTarget []float64   `yaml:"state_target,omitempty"`
}

// DefaultConfig is the first-order lag x' = -x + u, y = x under a unit step.
func DefaultConfig() *Config {
	return &Config{
		Name:      "first_order",
		Precision: DefaultPrecision,
		Dt:        DefaultDt,
		Steps:     DefaultSteps,
		A:         [][]float64{{-1}},
		B:         [][]float64{{1}},
		C:         [][]float64{{1}},
		D:         [][]float64{{0}},
		Input:     InputConfig{Kind: "step", Value: []float64{1}},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{Precision: DefaultPrecision, Dt: DefaultDt, Steps: DefaultSteps}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Dims returns the input, state and output counts implied by B, A and C.
func (c *Config) Dims() (nu, nx, ny int) {
	nx = len(c.A)
	ny = len(c.C)
	if len(c.B) > 0 {
		nu = len(c.B[0])
	}
	return nu, nx, ny
}

func (c *Config) Validate() error {
	nu, nx, ny := c.Dims()

	switch c.Precision {
	case "float64", "float32":
	default:
		return fmt.Errorf("%w: unknown precision %q", ErrInvalid, c.Precision)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalid, c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalid, c.Steps)
	}
	if nx == 0 {
		return fmt.Errorf("%w: matrix a is empty", ErrInvalid)
	}
	if ny == 0 {
		return fmt.Errorf("%w: matrix c is empty", ErrInvalid)
	}
	if err := checkMatrix("a", c.A, nx, nx); err != nil {
		return err
	}
	if len(c.B) > 0 {
		if err := checkMatrix("b", c.B, nx, nu); err != nil {
			return err
		}
	}
	if err := checkMatrix("c", c.C, ny, nx); err != nil {
		return err
	}
	if len(c.D) > 0 {
		if err := checkMatrix("d", c.D, ny, nu); err != nil {
			return err
		}
	}
	if err := checkVector("x0", c.X0, nx); err != nil {
		return err
	}
	for _, b := range []struct {
		name string
		b    Bounds
		n    int
	}{
		{"input_bounds", c.InputBounds, nu},
		{"state_bounds", c.StateBounds, nx},
		{"output_bounds", c.OutputBounds, ny},
	} {
		if err := checkVector(b.name+".lower", b.b.Lower, b.n); err != nil {
			return err
		}
		if err := checkVector(b.name+".upper", b.b.Upper, b.n); err != nil {
			return err
		}
	}
	return c.Input.validate(nu, nx)
}

func (in InputConfig) validate(nu, nx int) error {
	switch in.Kind {
	case "", "none", "sine":
		return nil
	case "step":
		return checkVector("input.value", in.Value, nu)
	case "pid":
		if nu == 0 {
			return fmt.Errorf("%w: pid needs at least one input", ErrInvalid)
		}
		return nil
	case "lqr":
		if err := checkMatrix("input.gain", in.Gain, nu, nx); err != nil {
			return err
		}
		return checkVector("input.state_target", in.StateTarget, nx)
	default:
		return fmt.Errorf("%w: unknown input kind %q", ErrInvalid, in.Kind)
	}
}

func checkMatrix(name string, m [][]float64, rows, cols int) error {
	if len(m) != rows {
		return fmt.Errorf("%w: %s has %d rows, want %d", ErrInvalid, name, len(m), rows)
	}
	for i, row := range m {
		if len(row) != cols {
			return fmt.Errorf("%w: %s row %d has %d columns, want %d", ErrInvalid, name, i, len(row), cols)
		}
	}
	return nil
}

// checkVector accepts an empty vector as "use the default".
func checkVector(name string, v []float64, n int) error {
	if len(v) != 0 && len(v) != n {
		return fmt.Errorf("%w: %s has %d entries, want %d", ErrInvalid, name, len(v), n)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.A = cloneMatrix(c.A)
	out.B = cloneMatrix(c.B)
	out.C = cloneMatrix(c.C)
	out.D = cloneMatrix(c.D)
	out.X0 = slices.Clone(c.X0)
	out.InputBounds = c.InputBounds.clone()
	out.StateBounds = c.StateBounds.clone()
	out.OutputBounds = c.OutputBounds.clone()
	out.Input.Value = slices.Clone(c.Input.Value)
	out.Input.Gain = cloneMatrix(c.Input.Gain)
	out.Input.StateTarget = slices.Clone(c.Input.StateTarget)
	return &out
}

func (b Bounds) clone() Bounds {
	return Bounds{Lower: slices.Clone(b.Lower), Upper: slices.Clone(b.Upper)}
}

func cloneMatrix(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = slices.Clone(row)
	}
	return out
}
