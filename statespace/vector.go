package statespace

import (
	"fmt"
	"slices"
)

// Vector is a column vector of N elements. The zero value is not usable;
// build one with NewVector, FilledVector or ZeroVector.
type Vector[T Scalar, N Dim] struct {
	data []T
}

// NewVector builds a vector from exactly N elements. It panics with
// ErrShape on any other count.
func NewVector[T Scalar, N Dim](elems ...T) Vector[T, N] {
	n := dimLen[N]()
	if len(elems) != n {
		panic(fmt.Errorf("%w: vector wants %d elements, got %d", ErrShape, n, len(elems)))
	}
	return Vector[T, N]{data: slices.Clone(elems)}
}

// FilledVector returns a vector with every element set to v.
func FilledVector[T Scalar, N Dim](v T) Vector[T, N] {
	data := make([]T, dimLen[N]())
	for i := range data {
		data[i] = v
	}
	return Vector[T, N]{data: data}
}

func ZeroVector[T Scalar, N Dim]() Vector[T, N] {
	return Vector[T, N]{data: make([]T, dimLen[N]())}
}

func (v Vector[T, N]) Len() int { return dimLen[N]() }

func (v Vector[T, N]) At(i int) T { return v.data[i] }

// Slice returns a copy of the elements.
func (v Vector[T, N]) Slice() []T {
	out := make([]T, dimLen[N]())
	copy(out, v.data)
	return out
}

// Equal reports whether both vectors hold identical elements.
func (v Vector[T, N]) Equal(o Vector[T, N]) bool {
	return slices.Equal(v.data, o.data)
}

func (v Vector[T, N]) String() string {
	return fmt.Sprint(v.data)
}

func (v Vector[T, N]) clone() Vector[T, N] {
	return Vector[T, N]{data: v.Slice()}
}
