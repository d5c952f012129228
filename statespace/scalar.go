package statespace

import (
	"fmt"
	"math"
)

// Scalar is the set of element types a Model can run on.
type Scalar interface {
	float32 | float64
}

// Default bounds applied to every component of a new BoundedVector. They are
// finite sentinels, not infinities: a domain whose values can exceed 9e99
// must set explicit bounds.
const (
	DefaultLower = -9e99
	DefaultUpper = 9e99
)

// Convert turns a float64 literal into T. Finite values beyond the largest
// finite T are rejected with ErrNotRepresentable. NaN and ±Inf pass through.
func Convert[T Scalar](v float64) (T, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return T(v), nil
	}
	if math.Abs(v) > maxFinite[T]() {
		var zero T
		return zero, fmt.Errorf("%w: %g as %T", ErrNotRepresentable, v, zero)
	}
	return T(v), nil
}

// saturate converts a bound sentinel, rounding out-of-range magnitudes to
// the matching infinity.
func saturate[T Scalar](v float64) T {
	if math.Abs(v) > maxFinite[T]() {
		return T(math.Inf(sign(v)))
	}
	return T(v)
}

func maxFinite[T Scalar]() float64 {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return math.MaxFloat32
	}
	return math.MaxFloat64
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
