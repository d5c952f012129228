package statespace

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Matrix is an R×C matrix stored row-major. The zero value is not usable;
// build one with NewMatrix, ZeroMatrix or Identity.
type Matrix[T Scalar, R, C Dim] struct {
	data []T
}

// NewMatrix builds a matrix from R*C elements in row-major order. It panics
// with ErrShape on any other count.
func NewMatrix[T Scalar, R, C Dim](rowMajor ...T) Matrix[T, R, C] {
	n := dimLen[R]() * dimLen[C]()
	if len(rowMajor) != n {
		panic(fmt.Errorf("%w: %dx%d matrix wants %d elements, got %d",
			ErrShape, dimLen[R](), dimLen[C](), n, len(rowMajor)))
	}
	data := make([]T, n)
	copy(data, rowMajor)
	return Matrix[T, R, C]{data: data}
}

func ZeroMatrix[T Scalar, R, C Dim]() Matrix[T, R, C] {
	return Matrix[T, R, C]{data: make([]T, dimLen[R]()*dimLen[C]())}
}

// Identity returns ones on the main diagonal and zeros elsewhere. Non-square
// shapes are allowed; the diagonal stops at the shorter side.
func Identity[T Scalar, R, C Dim]() Matrix[T, R, C] {
	m := ZeroMatrix[T, R, C]()
	rows, cols := dimLen[R](), dimLen[C]()
	for i := 0; i < min(rows, cols); i++ {
		m.data[i*cols+i] = 1
	}
	return m
}

func (m Matrix[T, R, C]) Rows() int { return dimLen[R]() }
func (m Matrix[T, R, C]) Cols() int { return dimLen[C]() }

func (m Matrix[T, R, C]) At(i, j int) T {
	cols := dimLen[C]()
	if i < 0 || i >= dimLen[R]() || j < 0 || j >= cols {
		panic(fmt.Sprintf("statespace: index (%d,%d) out of range", i, j))
	}
	return m.data[i*cols+j]
}

// Scale returns s·m.
func (m Matrix[T, R, C]) Scale(s T) Matrix[T, R, C] {
	out := m.clone()
	for i := range out.data {
		out.data[i] *= s
	}
	return out
}

// RawRowMajor returns a copy of the elements in row-major order.
func (m Matrix[T, R, C]) RawRowMajor() []T {
	out := make([]T, len(m.data))
	copy(out, m.data)
	return out
}

// Dense returns a float64 gonum copy of m, mainly for mat.Formatted.
// Matrices with a zero dimension have no Dense form and return nil.
func (m Matrix[T, R, C]) Dense() *mat.Dense {
	rows, cols := dimLen[R](), dimLen[C]()
	if rows == 0 || cols == 0 {
		return nil
	}
	data := make([]float64, len(m.data))
	for i, v := range m.data {
		data[i] = float64(v)
	}
	return mat.NewDense(rows, cols, data)
}

func (m Matrix[T, R, C]) Equal(o Matrix[T, R, C]) bool {
	return slices.Equal(m.data, o.data)
}

func (m Matrix[T, R, C]) clone() Matrix[T, R, C] {
	return Matrix[T, R, C]{data: m.RawRowMajor()}
}

// mulVecInto computes dst = m·x (beta 0) or dst += m·x (beta 1).
func mulVecInto[T Scalar, R, C Dim](m Matrix[T, R, C], x []T, beta T, dst []T) {
	mulVec(dimLen[R](), dimLen[C](), m.data, x, beta, dst)
}
