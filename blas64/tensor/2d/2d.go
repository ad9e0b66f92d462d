package tensor2d

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

func NewZeros(rows, cols int) blas64.General {
	return blas64.General{
		Rows:   rows,
		Cols:   cols,
		Stride: cols,
		Data:   make([]float64, rows*cols),
	}
}

func NewOnes(rows, cols int) blas64.General {
	gen := NewZeros(rows, cols)
	for i := range gen.Data {
		gen.Data[i] = 1.0
	}
	return gen
}

// NewAugmented returns a (rows+1)×cols matrix of zeros whose last row is ones.
func NewAugmented(rows, cols int) blas64.General {
	gen := NewOnes(rows+1, cols)
	clear(gen.Data[:rows*gen.Stride])
	return gen
}

// ResetAugmented zeroes every row of gen except the last.
func ResetAugmented(gen blas64.General) {
	for r := 0; r < gen.Rows-1; r++ {
		clear(gen.Data[r*gen.Stride : r*gen.Stride+gen.Cols])
	}
}

// AugmentRows copies rows of x into a new matrix and appends a row of ones.
func AugmentRows(x mat.Matrix, rows []int) blas64.General {
	_, cols := x.Dims()
	gen := NewAugmented(len(rows), cols)
	if d, ok := x.(*mat.Dense); ok {
		raw := d.RawMatrix()
		for i, row := range rows {
			copy(gen.Data[i*gen.Stride:i*gen.Stride+cols], raw.Data[row*raw.Stride:row*raw.Stride+cols])
		}
		return gen
	}
	for i, row := range rows {
		for c := 0; c < cols; c++ {
			gen.Data[At(gen, i, c)] = x.At(row, c)
		}
	}
	return gen
}

func N(gen blas64.General) int {
	return gen.Rows * gen.Cols
}

func Clone(gen blas64.General) blas64.General {
	return blas64.General{
		Rows:   gen.Rows,
		Cols:   gen.Cols,
		Stride: gen.Stride,
		Data:   slices.Clone(gen.Data),
	}
}

func At(gen blas64.General, row, col int) int {
	return row*gen.Stride + col
}

func ToVector(gen blas64.General) blas64.Vector {
	return blas64.Vector{
		N:    N(gen),
		Inc:  1,
		Data: gen.Data,
	}
}

// Axpy computes y += alpha*x. Both matrices must be contiguous.
func Axpy(alpha float64, x, y blas64.General) {
	blas64.Axpy(alpha, ToVector(x), ToVector(y))
}

func Tanh(gen blas64.General) {
	for i, e := range gen.Data {
		gen.Data[i] = math.Tanh(e)
	}
}

func Transpose(gen blas64.General) blas64.General {
	t := NewZeros(gen.Cols, gen.Rows)
	for i := range t.Rows {
		for j := range t.Cols {
			t.Data[At(t, i, j)] = gen.Data[At(gen, j, i)]
		}
	}
	return t
}

func Dot(tA, tB blas.Transpose, a, b blas64.General) blas64.General {
	rows, cols := a.Rows, b.Cols
	if tA == blas.Trans {
		rows = a.Cols
	}
	if tB == blas.Trans {
		cols = b.Rows
	}
	y := NewZeros(rows, cols)
	blas64.Gemm(tA, tB, 1.0, a, b, 0.0, y)
	return y
}

// ToDense wraps gen without copying.
func ToDense(gen blas64.General) *mat.Dense {
	var d mat.Dense
	d.SetRawMatrix(gen)
	return &d
}
