package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrTooShort = errors.New("analysis: series too short")

// Spectrum is a one-sided power spectrum. Freqs[i] is in Hz for the sample
// interval the spectrum was computed with.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum removes the mean of series and returns |X(f)|²/n for
// 0 <= f <= 1/(2·dt).
func PowerSpectrum(series []float64, dt float64) (*Spectrum, error) {
	n := len(series)
	if n < 4 || dt <= 0 {
		return nil, ErrTooShort
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	half := n/2 + 1
	spec := &Spectrum{
		Freqs: make([]float64, half),
		Power: make([]float64, half),
	}
	for k := range half {
		mag := cmplx.Abs(coeffs[k])
		spec.Freqs[k] = float64(k) / (float64(n) * dt)
		spec.Power[k] = mag * mag / float64(n)
	}
	return spec, nil
}

// Peak returns the frequency with the most power, ignoring DC.
func (s *Spectrum) Peak() (freq, power float64) {
	for k := 1; k < len(s.Power); k++ {
		if s.Power[k] > power {
			freq, power = s.Freqs[k], s.Power[k]
		}
	}
	return freq, power
}

// DominantFrequency is the spectral peak of series in Hz. A constant series
// has no dominant frequency and returns 0.
func DominantFrequency(series []float64, dt float64) (float64, error) {
	spec, err := PowerSpectrum(series, dt)
	if err != nil {
		return 0, err
	}
	freq, power := spec.Peak()
	if power < 1e-12 || math.IsNaN(power) {
		return 0, nil
	}
	return freq, nil
}
