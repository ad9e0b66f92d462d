package sparse

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var ErrStructure = errors.New("sparse: malformed compressed column structure")

// CSC is a compressed sparse column matrix. Column j holds the entries
// Data[Indptr[j]:Indptr[j+1]] at rows Ind[Indptr[j]:Indptr[j+1]], with row
// indices strictly increasing inside a column.
type CSC struct {
	rows   int
	cols   int
	indptr []int
	ind    []int
	data   []float64
}

func NewCSC(rows, cols int, indptr, ind []int, data []float64) (*CSC, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: negative dimension %dx%d", ErrStructure, rows, cols)
	}
	if len(indptr) != cols+1 {
		return nil, fmt.Errorf("%w: len(indptr)=%d, want %d", ErrStructure, len(indptr), cols+1)
	}
	if len(ind) != len(data) {
		return nil, fmt.Errorf("%w: len(ind)=%d != len(data)=%d", ErrStructure, len(ind), len(data))
	}
	if indptr[0] != 0 || indptr[cols] != len(data) {
		return nil, fmt.Errorf("%w: indptr must span [0, %d]", ErrStructure, len(data))
	}
	for j := 0; j < cols; j++ {
		if indptr[j] > indptr[j+1] {
			return nil, fmt.Errorf("%w: indptr decreases at column %d", ErrStructure, j)
		}
		prev := -1
		for k := indptr[j]; k < indptr[j+1]; k++ {
			i := ind[k]
			if i < 0 || i >= rows {
				return nil, fmt.Errorf("%w: row %d out of range [0, %d)", ErrStructure, i, rows)
			}
			if i <= prev {
				return nil, fmt.Errorf("%w: rows not strictly increasing in column %d", ErrStructure, j)
			}
			prev = i
		}
	}
	return &CSC{rows: rows, cols: cols, indptr: indptr, ind: ind, data: data}, nil
}

func (c *CSC) Dims() (int, int) {
	return c.rows, c.cols
}

func (c *CSC) At(i, j int) float64 {
	if i < 0 || i >= c.rows || j < 0 || j >= c.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	lo, hi := c.indptr[j], c.indptr[j+1]
	k := lo + sort.SearchInts(c.ind[lo:hi], i)
	if k < hi && c.ind[k] == i {
		return c.data[k]
	}
	return 0
}

func (c *CSC) T() mat.Matrix {
	return mat.Transpose{Matrix: c}
}

func (c *CSC) NNZ() int {
	return len(c.data)
}

// DoNonZero calls fn for every stored entry in column-major order.
func (c *CSC) DoNonZero(fn func(i, j int, v float64)) {
	for j := 0; j < c.cols; j++ {
		for k := c.indptr[j]; k < c.indptr[j+1]; k++ {
			fn(c.ind[k], j, c.data[k])
		}
	}
}

// SelectRows returns the len(rows)×cols matrix whose i-th row is row rows[i]
// of c.
func (c *CSC) SelectRows(rows []int) (*CSC, error) {
	pos := make([]int, c.rows)
	for i := range pos {
		pos[i] = -1
	}
	for newRow, row := range rows {
		if row < 0 || row >= c.rows {
			return nil, fmt.Errorf("sparse: select row %d out of range [0, %d)", row, c.rows)
		}
		if pos[row] != -1 {
			return nil, fmt.Errorf("sparse: duplicate row %d in selection", row)
		}
		pos[row] = newRow
	}

	type entry struct {
		row int
		v   float64
	}
	indptr := make([]int, c.cols+1)
	ind := make([]int, 0)
	data := make([]float64, 0)
	col := make([]entry, 0)
	for j := 0; j < c.cols; j++ {
		col = col[:0]
		for k := c.indptr[j]; k < c.indptr[j+1]; k++ {
			if p := pos[c.ind[k]]; p != -1 {
				col = append(col, entry{row: p, v: c.data[k]})
			}
		}
		slices.SortFunc(col, func(a, b entry) int { return a.row - b.row })
		for _, e := range col {
			ind = append(ind, e.row)
			data = append(data, e.v)
		}
		indptr[j+1] = len(data)
	}
	return &CSC{rows: len(rows), cols: c.cols, indptr: indptr, ind: ind, data: data}, nil
}

func (c *CSC) ToDense() *mat.Dense {
	if c.rows == 0 || c.cols == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(c.rows, c.cols, nil)
	c.DoNonZero(func(i, j int, v float64) {
		d.Set(i, j, v)
	})
	return d
}
