package plant

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ltisim/internal/config"
	"github.com/san-kum/ltisim/internal/sim"
	ss "github.com/san-kum/ltisim/statespace"
)

type modelPlant[T ss.Scalar, NU, NX, NY ss.Dim] struct {
	model   *ss.Model[T, NU, NX, NY]
	initial *ss.Model[T, NU, NX, NY]
	input   *ss.BoundedVector[T, NU]
}

func newModelPlant[T ss.Scalar, NU, NX, NY ss.Dim](cfg *config.Config) (sim.Plant, error) {
	a, err := toMatrix[T, NX, NX]("a", cfg.A)
	if err != nil {
		return nil, err
	}
	b, err := toMatrix[T, NX, NU]("b", cfg.B)
	if err != nil {
		return nil, err
	}
	c, err := toMatrix[T, NY, NX]("c", cfg.C)
	if err != nil {
		return nil, err
	}
	d, err := toMatrix[T, NY, NU]("d", cfg.D)
	if err != nil {
		return nil, err
	}

	u, err := toBounded[T, NU]("u", nil, cfg.InputBounds)
	if err != nil {
		return nil, err
	}
	x, err := toBounded[T, NX]("x", cfg.X0, cfg.StateBounds)
	if err != nil {
		return nil, err
	}
	y, err := toBounded[T, NY]("y", nil, cfg.OutputBounds)
	if err != nil {
		return nil, err
	}

	dt, err := ss.Convert[T](cfg.Dt)
	if err != nil {
		return nil, fmt.Errorf("dt: %w", err)
	}

	m := ss.New[T, NU, NX, NY]().
		SetA(a).SetB(b).SetC(c).SetD(d).
		SetU(u).SetX(x).SetY(y).
		SetDt(dt)

	return &modelPlant[T, NU, NX, NY]{
		model:   m,
		initial: m.Clone(),
		input:   u,
	}, nil
}

func (p *modelPlant[T, NU, NX, NY]) Shape() sim.Shape {
	return sim.Shape{NU: p.model.U().Len(), NX: p.model.X().Len(), NY: p.model.Y().Len()}
}

func (p *modelPlant[T, NU, NX, NY]) Dt() float64 { return float64(p.model.Dt()) }

// SetInput replaces the value of u and keeps the configured input bounds.
// The value is clamped by the next Advance.
func (p *modelPlant[T, NU, NX, NY]) SetInput(u sim.Control) error {
	if want := p.input.Value().Len(); len(u) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrInputLength, len(u), want)
	}
	vals, err := convertAll[T](u)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	p.input.SetValue(ss.NewVector[T, NU](vals...))
	p.model.SetU(p.input)
	return nil
}

func (p *modelPlant[T, NU, NX, NY]) Advance() { p.model.Advance() }

func (p *modelPlant[T, NU, NX, NY]) Input() sim.Control {
	return sim.Control(toFloat64(p.model.U().Slice()))
}

func (p *modelPlant[T, NU, NX, NY]) State() sim.State {
	return sim.State(toFloat64(p.model.X().Slice()))
}

func (p *modelPlant[T, NU, NX, NY]) Output() sim.State {
	return sim.State(toFloat64(p.model.Y().Slice()))
}

// Reset restores the model as it was built, including its initial state.
func (p *modelPlant[T, NU, NX, NY]) Reset() {
	p.model = p.initial.Clone()
	p.input = p.model.InputBounds()
}

func (p *modelPlant[T, NU, NX, NY]) Describe() string {
	var sb strings.Builder
	shape := p.Shape()
	var zero T
	fmt.Fprintf(&sb, "nu=%d nx=%d ny=%d dt=%g precision=%T\n", shape.NU, shape.NX, shape.NY, p.Dt(), zero)
	for _, m := range []struct {
		name  string
		dense *mat.Dense
	}{
		{"A", p.model.A().Dense()},
		{"B", p.model.B().Dense()},
		{"C", p.model.C().Dense()},
		{"D", p.model.D().Dense()},
	} {
		if m.dense == nil {
			fmt.Fprintf(&sb, "%s = (empty)\n", m.name)
			continue
		}
		fmt.Fprintf(&sb, "%s = %v\n", m.name, mat.Formatted(m.dense, mat.Prefix("    "), mat.Squeeze()))
	}
	fmt.Fprintf(&sb, "x0 = %v\n", p.initial.X())
	return sb.String()
}

// toMatrix converts a list of rows. An empty list means a zero matrix.
func toMatrix[T ss.Scalar, R, C ss.Dim](name string, rows [][]float64) (ss.Matrix[T, R, C], error) {
	if len(rows) == 0 {
		return ss.ZeroMatrix[T, R, C](), nil
	}
	var r R
	var c C
	flat := make([]float64, 0, r.Len()*c.Len())
	for _, row := range rows {
		flat = append(flat, row...)
	}
	if len(rows) != r.Len() || len(flat) != r.Len()*c.Len() {
		return ss.Matrix[T, R, C]{}, fmt.Errorf("%s: %w", name, ss.ErrShape)
	}
	vals, err := convertAll[T](flat)
	if err != nil {
		return ss.Matrix[T, R, C]{}, fmt.Errorf("%s: %w", name, err)
	}
	return ss.NewMatrix[T, R, C](vals...), nil
}

func toBounded[T ss.Scalar, N ss.Dim](name string, value []float64, b config.Bounds) (*ss.BoundedVector[T, N], error) {
	bv := ss.NewBoundedVector[T, N]()
	for _, part := range []struct {
		suffix string
		vals   []float64
		set    func(ss.Vector[T, N]) *ss.BoundedVector[T, N]
	}{
		{"", value, bv.SetValue},
		{".lower", b.Lower, bv.SetLower},
		{".upper", b.Upper, bv.SetUpper},
	} {
		if len(part.vals) == 0 {
			continue
		}
		var n N
		if len(part.vals) != n.Len() {
			return nil, fmt.Errorf("%s%s: %w", name, part.suffix, ss.ErrShape)
		}
		vals, err := convertAll[T](part.vals)
		if err != nil {
			return nil, fmt.Errorf("%s%s: %w", name, part.suffix, err)
		}
		part.set(ss.NewVector[T, N](vals...))
	}
	return bv, nil
}

func convertAll[T ss.Scalar](in []float64) ([]T, error) {
	out := make([]T, len(in))
	for i, v := range in {
		c, err := ss.Convert[T](v)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func toFloat64[T ss.Scalar](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
