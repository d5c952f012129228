package plant

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/ltisim/internal/config"
	"github.com/san-kum/ltisim/internal/sim"
	"github.com/san-kum/ltisim/statespace"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestBuildFirstOrder(t *testing.T) {
	p, err := Build(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Shape(); got != (sim.Shape{NU: 1, NX: 1, NY: 1}) {
		t.Fatalf("shape = %+v", got)
	}
	if p.Dt() != 0.1 {
		t.Errorf("dt = %v", p.Dt())
	}

	if err := p.SetInput(sim.Control{1}); err != nil {
		t.Fatal(err)
	}
	p.Advance()
	if x, y := p.State()[0], p.Output()[0]; !approx(x, 0.1) || y != 0 {
		t.Errorf("step 1: x=%v y=%v, want 0.1 0", x, y)
	}
	p.Advance()
	if x, y := p.State()[0], p.Output()[0]; !approx(x, 0.19) || !approx(y, 0.1) {
		t.Errorf("step 2: x=%v y=%v, want 0.19 0.1", x, y)
	}
	if u := p.Input()[0]; u != 1 {
		t.Errorf("input = %v, want 1", u)
	}
}

func TestBuildAllPresets(t *testing.T) {
	for _, name := range config.ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := config.GetPreset(name)
			p, err := Build(cfg)
			if err != nil {
				t.Fatal(err)
			}
			nu, nx, ny := cfg.Dims()
			if got := p.Shape(); got != (sim.Shape{NU: nu, NX: nx, NY: ny}) {
				t.Errorf("shape = %+v, want %d %d %d", got, nu, nx, ny)
			}
			if len(p.State()) != nx || len(p.Output()) != ny || len(p.Input()) != nu {
				t.Error("slice lengths do not match shape")
			}
		})
	}
}

func TestBuildFloat32(t *testing.T) {
	cfg := config.GetPreset("first_order_f32")
	p, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetInput(sim.Control{1}); err != nil {
		t.Fatal(err)
	}
	p.Advance()
	if x := p.State()[0]; x != float64(float32(0.1)) {
		t.Errorf("x = %v, want float32(0.1)", x)
	}
	if !strings.Contains(p.(Describer).Describe(), "float32") {
		t.Error("describe should name the precision")
	}
}

func TestBuildUnsupportedShape(t *testing.T) {
	cfg := config.DefaultConfig()
	n := MaxDim + 1
	cfg.A = make([][]float64, n)
	cfg.B = make([][]float64, n)
	cfg.C = [][]float64{make([]float64, n)}
	for i := range n {
		cfg.A[i] = make([]float64, n)
		cfg.B[i] = []float64{1}
	}

	_, err := Build(cfg)
	if !errors.Is(err, ErrUnsupportedShape) {
		t.Errorf("err = %v, want ErrUnsupportedShape", err)
	}
}

func TestBuildInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Dt = -1
	if _, err := Build(cfg); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestBuildNotRepresentable(t *testing.T) {
	cfg := config.GetPreset("first_order_f32")
	cfg.StateBounds = config.Bounds{Upper: []float64{1e40}}

	_, err := Build(cfg)
	if !errors.Is(err, statespace.ErrNotRepresentable) {
		t.Errorf("err = %v, want ErrNotRepresentable", err)
	}
}

func TestSetInputLength(t *testing.T) {
	p, err := Build(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetInput(sim.Control{1, 2}); !errors.Is(err, ErrInputLength) {
		t.Errorf("err = %v, want ErrInputLength", err)
	}
}

func TestInputBoundsKept(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.InputBounds = config.Bounds{Lower: []float64{-0.5}, Upper: []float64{0.5}}
	p, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.SetInput(sim.Control{2}); err != nil {
		t.Fatal(err)
	}
	p.Advance()
	if u := p.Input()[0]; u != 0.5 {
		t.Errorf("clamped input = %v, want 0.5", u)
	}
	if x := p.State()[0]; !approx(x, 0.05) {
		t.Errorf("x = %v, want 0.05", x)
	}

	if err := p.SetInput(sim.Control{-3}); err != nil {
		t.Fatal(err)
	}
	p.Advance()
	if u := p.Input()[0]; u != -0.5 {
		t.Errorf("clamped input = %v, want -0.5", u)
	}
}

func TestReset(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.X0 = []float64{2}
	p, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}

	_ = p.SetInput(sim.Control{1})
	for range 5 {
		p.Advance()
	}
	p.Reset()

	if x := p.State()[0]; x != 2 {
		t.Errorf("state after reset = %v, want 2", x)
	}
	if u := p.Input()[0]; u != 0 {
		t.Errorf("input after reset = %v, want 0", u)
	}
	if y := p.Output()[0]; y != 0 {
		t.Errorf("output after reset = %v, want 0", y)
	}
}

func TestAutonomousPlant(t *testing.T) {
	p, err := Build(config.GetPreset("oscillator"))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetInput(sim.Control{}); err != nil {
		t.Fatal(err)
	}
	x0 := p.State()
	p.Advance()
	if y := p.Output()[0]; y != x0[0] {
		t.Errorf("first output = %v, want x0[0] = %v", y, x0[0])
	}
}

func TestDescribe(t *testing.T) {
	p, err := Build(config.GetPreset("mass_spring_damper"))
	if err != nil {
		t.Fatal(err)
	}
	d, ok := p.(Describer)
	if !ok {
		t.Fatal("plant does not implement Describer")
	}
	out := d.Describe()
	for _, want := range []string{"nu=1 nx=2 ny=1", "A =", "B =", "C =", "D =", "x0 ="} {
		if !strings.Contains(out, want) {
			t.Errorf("describe missing %q:\n%s", want, out)
		}
	}
}
