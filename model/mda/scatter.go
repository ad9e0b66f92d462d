package mda

import (
	"fmt"

	"github.com/sw965/mda/blas64/tensor/2d"
	"github.com/sw965/mda/chunk"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// FoldStats holds the sufficient statistics of one fold.
type FoldStats struct {
	// Scatter is the (r+1)×(r+1) sum of augmented outer products.
	Scatter *mat.SymDense
	// P is the targets×(r+1) cross moment, nil in SelfReconstruction mode.
	P *mat.Dense
}

type slot struct {
	fold   int
	offset int
}

// Accumulator sums per-fold scatter and cross moments over a stream of
// chunks. It is owned by a single training pass and is not safe for
// concurrent use.
type Accumulator struct {
	folds   []Fold
	mode    Mode
	targets int
	slots   []slot
	stats   map[int]*FoldStats
	blocks  []blas64.General

	chunks int
	docs   int
}

// NewAccumulator accumulates scatter matrices, plus cross moments against
// targets rows in SupervisedReduction mode.
func NewAccumulator(folds []Fold, mode Mode, targets int) *Accumulator {
	dims := 0
	for _, f := range folds {
		dims += f.Size()
	}
	slots := make([]slot, dims)
	for _, f := range folds {
		for offset, dim := range f.Dims {
			slots[dim] = slot{fold: f.Index, offset: offset}
		}
	}
	return &Accumulator{
		folds:   folds,
		mode:    mode,
		targets: targets,
		slots:   slots,
		stats:   map[int]*FoldStats{},
		blocks:  make([]blas64.General, len(folds)),
	}
}

func (a *Accumulator) foldStats(f int) *FoldStats {
	if st, ok := a.stats[f]; ok {
		return st
	}
	r := a.folds[f].Size()
	st := &FoldStats{Scatter: mat.NewSymDense(r+1, nil)}
	if a.mode == SupervisedReduction {
		st.P = mat.NewDense(a.targets, r+1, nil)
	}
	a.stats[f] = st
	return st
}

// augment scatters the nonzeros of p.Full into one augmented block per fold.
func (a *Accumulator) augment(p chunk.Pair) {
	n := p.Docs()
	for f, fold := range a.folds {
		if a.blocks[f].Cols != n {
			a.blocks[f] = tensor2d.NewAugmented(fold.Size(), n)
		} else {
			tensor2d.ResetAugmented(a.blocks[f])
		}
	}
	p.Full.DoNonZero(func(i, j int, v float64) {
		s := a.slots[i]
		block := a.blocks[s.fold]
		block.Data[tensor2d.At(block, s.offset, j)] = v
	})
}

func (a *Accumulator) Add(p chunk.Pair) error {
	rows, n := p.Full.Dims()
	if rows != len(a.slots) {
		return fmt.Errorf("mda: chunk has %d rows, want %d: %w", rows, len(a.slots), mat.ErrShape)
	}
	if n == 0 {
		return nil
	}

	var target blas64.General
	if a.mode == SupervisedReduction {
		if p.Target == nil {
			return fmt.Errorf("mda: chunk %d has no target representation", p.Index)
		}
		target = p.Target.ToDense().RawMatrix()
		if target.Rows != a.targets {
			return fmt.Errorf("mda: target representation has %d rows, want %d: %w", target.Rows, a.targets, mat.ErrShape)
		}
	}

	a.augment(p)
	for f := range a.folds {
		st := a.foldStats(f)
		x := a.blocks[f]
		st.Scatter.SymRankK(st.Scatter, 1, tensor2d.ToDense(x))
		if a.mode == SupervisedReduction {
			blas64.Gemm(blas.NoTrans, blas.Trans, 1, target, x, 1, st.P.RawMatrix())
		}
	}
	a.chunks++
	a.docs += n
	return nil
}

// Stats returns the statistics of fold f, or nil if no chunk reached it.
func (a *Accumulator) Stats(f int) *FoldStats {
	return a.stats[f]
}

func (a *Accumulator) Chunks() int {
	return a.chunks
}

func (a *Accumulator) Documents() int {
	return a.docs
}
