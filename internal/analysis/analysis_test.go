package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDominantFrequency(t *testing.T) {
	dt := 0.01
	series := make([]float64, 2048)
	for i := range series {
		series[i] = 3 + math.Sin(2*math.Pi*0.5*float64(i)*dt)
	}

	f, err := DominantFrequency(series, dt)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-0.5) > 0.05 {
		t.Errorf("dominant frequency = %v, want about 0.5", f)
	}
}

func TestDominantFrequencyOddLength(t *testing.T) {
	dt := 0.1
	series := make([]float64, 301)
	for i := range series {
		series[i] = math.Cos(2 * math.Pi * 1.0 * float64(i) * dt)
	}
	f, err := DominantFrequency(series, dt)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-1.0) > 0.05 {
		t.Errorf("dominant frequency = %v, want about 1", f)
	}
}

func TestDominantFrequencyConstant(t *testing.T) {
	series := []float64{2, 2, 2, 2, 2, 2, 2, 2}
	f, err := DominantFrequency(series, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if f != 0 {
		t.Errorf("constant series frequency = %v, want 0", f)
	}
}

func TestPowerSpectrumShape(t *testing.T) {
	ps, err := PowerSpectrum(make([]float64, 10), 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(ps.Freqs) != 6 || len(ps.Power) != 6 {
		t.Fatalf("got %d bins, want 6", len(ps.Freqs))
	}
	if ps.Freqs[5] != 1 {
		t.Errorf("last bin = %v, want Nyquist 1", ps.Freqs[5])
	}
}

func TestTooShort(t *testing.T) {
	if _, err := PowerSpectrum([]float64{1, 2}, 0.1); !errors.Is(err, ErrTooShort) {
		t.Errorf("err = %v, want ErrTooShort", err)
	}
	if _, err := PowerSpectrum(make([]float64, 16), 0); !errors.Is(err, ErrTooShort) {
		t.Errorf("zero dt: err = %v, want ErrTooShort", err)
	}
	if _, err := StepResponse([]float64{0}, []float64{0}, 0.02); !errors.Is(err, ErrTooShort) {
		t.Errorf("err = %v, want ErrTooShort", err)
	}
}

func TestStepResponseFirstOrder(t *testing.T) {
	dt := 0.001
	n := 10001
	times := make([]float64, n)
	y := make([]float64, n)
	for i := range n {
		times[i] = float64(i) * dt
		y[i] = 1 - math.Exp(-times[i])
	}

	info, err := StepResponse(times, y, 0.02)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(info.RiseTime-math.Log(9)) > 0.01 {
		t.Errorf("rise time = %v, want ln 9", info.RiseTime)
	}
	if info.Overshoot != 0 {
		t.Errorf("overshoot = %v, want 0", info.Overshoot)
	}
	if math.Abs(info.SettlingTime-math.Log(50)) > 0.01 {
		t.Errorf("settling time = %v, want about ln 50", info.SettlingTime)
	}
}

func TestStepResponseOvershoot(t *testing.T) {
	times := []float64{0, 1, 2, 3, 4}
	y := []float64{0, 1.5, 0.9, 1, 1}

	info, err := StepResponse(times, y, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if info.Peak != 1.5 || math.Abs(info.Overshoot-50) > 1e-9 {
		t.Errorf("peak %v overshoot %v, want 1.5 and 50%%", info.Peak, info.Overshoot)
	}
	if info.SettlingTime != 3 {
		t.Errorf("settling time = %v, want 3", info.SettlingTime)
	}
}

func TestStepResponseNegativeStep(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	y := []float64{2, 0.5, 1.2, 1}

	info, err := StepResponse(times, y, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if info.Peak != 0.5 || math.Abs(info.Overshoot-50) > 1e-9 {
		t.Errorf("peak %v overshoot %v, want 0.5 and 50%%", info.Peak, info.Overshoot)
	}
}

func TestPhasePortrait(t *testing.T) {
	states := make([][]float64, 200)
	for i := range states {
		a := 2 * math.Pi * float64(i) / 200
		states[i] = []float64{math.Cos(a), math.Sin(a)}
	}

	p := NewPhasePortrait(states, 0, 1)
	if p == nil || len(p.Points) != 200 {
		t.Fatal("expected 200 points")
	}

	art := p.ASCII(40, 20)
	lines := strings.Split(strings.TrimSuffix(art, "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 rows, got %d", len(lines))
	}
	for _, want := range []string{"•", "│", "─"} {
		if !strings.Contains(art, want) {
			t.Errorf("portrait missing %q", want)
		}
	}

	if NewPhasePortrait(states, 0, 2) != nil {
		t.Error("out of range index should give nil")
	}
	if (*PhasePortrait)(nil).ASCII(10, 10) != "" {
		t.Error("nil portrait should render empty")
	}
}
