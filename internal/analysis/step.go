package analysis

import "math"

// StepInfo summarises the response of one output channel to a step.
type StepInfo struct {
	Initial      float64
	Final        float64
	Peak         float64
	Overshoot    float64 // percent of the step size
	RiseTime     float64 // 10% to 90% of the step
	SettlingTime float64 // last exit from the ±tol band
}

// StepResponse measures y against times. The final value is taken as the
// last sample, so the run must be long enough to settle. tol is the
// settling band as a fraction of the step size.
func StepResponse(times, y []float64, tol float64) (StepInfo, error) {
	n := min(len(times), len(y))
	if n < 2 {
		return StepInfo{}, ErrTooShort
	}

	info := StepInfo{Initial: y[0], Final: y[n-1], Peak: y[0]}
	step := info.Final - info.Initial
	if step == 0 {
		return info, nil
	}

	dir := math.Copysign(1, step)
	lo := info.Initial + 0.1*step
	hi := info.Initial + 0.9*step
	tLo, tHi := math.NaN(), math.NaN()

	for i := range n {
		if dir*y[i] > dir*info.Peak {
			info.Peak = y[i]
		}
		if math.IsNaN(tLo) && dir*(y[i]-lo) >= 0 {
			tLo = times[i]
		}
		if math.IsNaN(tHi) && dir*(y[i]-hi) >= 0 {
			tHi = times[i]
		}
	}
	info.RiseTime = tHi - tLo
	info.Overshoot = math.Max(0, 100*dir*(info.Peak-info.Final)/math.Abs(step))

	band := tol * math.Abs(step)
	info.SettlingTime = times[0]
	for i := n - 1; i >= 0; i-- {
		if math.Abs(y[i]-info.Final) > band {
			if i+1 < n {
				info.SettlingTime = times[i+1]
			}
			break
		}
	}
	return info, nil
}
