package statespace

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
)

// mulVec computes y = a·x + beta·y for a rows×cols row-major matrix.
// beta is either 0 (overwrite) or 1 (accumulate).
func mulVec[T Scalar](rows, cols int, a, x []T, beta T, y []T) {
	if rows == 0 {
		return
	}
	if cols == 0 {
		if beta == 0 {
			clear(y)
		}
		return
	}
	switch a := any(a).(type) {
	case []float64:
		blas64.Gemv(blas.NoTrans, 1,
			blas64.General{Rows: rows, Cols: cols, Stride: cols, Data: a},
			blas64.Vector{N: cols, Inc: 1, Data: any(x).([]float64)},
			float64(beta),
			blas64.Vector{N: rows, Inc: 1, Data: any(y).([]float64)})
	case []float32:
		blas32.Gemv(blas.NoTrans, 1,
			blas32.General{Rows: rows, Cols: cols, Stride: cols, Data: a},
			blas32.Vector{N: cols, Inc: 1, Data: any(x).([]float32)},
			float32(beta),
			blas32.Vector{N: rows, Inc: 1, Data: any(y).([]float32)})
	}
}

// axpy computes y += alpha·x.
func axpy[T Scalar](alpha T, x, y []T) {
	if len(x) == 0 {
		return
	}
	switch x := any(x).(type) {
	case []float64:
		blas64.Axpy(float64(alpha),
			blas64.Vector{N: len(x), Inc: 1, Data: x},
			blas64.Vector{N: len(x), Inc: 1, Data: any(y).([]float64)})
	case []float32:
		blas32.Axpy(float32(alpha),
			blas32.Vector{N: len(x), Inc: 1, Data: x},
			blas32.Vector{N: len(x), Inc: 1, Data: any(y).([]float32)})
	}
}
