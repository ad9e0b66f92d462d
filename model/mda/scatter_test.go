package mda_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw965/mda/chunk"
	"github.com/sw965/mda/corpus"
	"github.com/sw965/mda/dataset"
	"github.com/sw965/mda/model/mda"
	"gonum.org/v1/gonum/mat"
)

func accumulate(t *testing.T, docs []corpus.Document, folds []mda.Fold, dim int, targets []int, size int) *mda.Accumulator {
	t.Helper()
	dual, err := chunk.NewDual(corpus.FromSlice(docs), dim, targets, size)
	require.NoError(t, err)
	mode := mda.SelfReconstruction
	if targets != nil {
		mode = mda.SupervisedReduction
	}
	acc := mda.NewAccumulator(folds, mode, len(targets))
	for p, err := range dual.All() {
		require.NoError(t, err)
		require.NoError(t, acc.Add(p))
	}
	return acc
}

func TestScatterValues(t *testing.T) {
	docs := []corpus.Document{
		{{ID: 0, Count: 1}, {ID: 1, Count: 2}},
		{{ID: 1, Count: 3}},
	}
	folds := mda.Partition([]int{0, 1}, 2)
	acc := accumulate(t, docs, folds, 2, nil, 1)

	expected := mat.NewSymDense(3, []float64{
		1, 2, 1,
		2, 13, 5,
		1, 5, 2,
	})
	st := acc.Stats(0)
	assert.True(t, mat.Equal(expected, st.Scatter))
	assert.Nil(t, st.P)
	assert.Equal(t, 2, acc.Chunks())
	assert.Equal(t, 2, acc.Documents())
}

func TestScatterMatchesDenseProduct(t *testing.T) {
	const dim = 10
	docs := dataset.NewRandomSparse(50, dim, 0.4, 5, newRand(7))
	perm := newRand(8).Perm(dim)
	folds := mda.Partition(perm, 3)
	targets := []int{0, 1, 2}
	acc := accumulate(t, docs, folds, dim, targets, 7)

	x, err := corpus.ToDense(docs, dim)
	require.NoError(t, err)
	for _, f := range folds {
		r := f.Size()
		aug := mat.NewDense(r+1, len(docs), nil)
		for i, d := range f.Dims {
			aug.SetRow(i, mat.Row(nil, d, x))
		}
		for j := range docs {
			aug.Set(r, j, 1)
		}
		var s mat.Dense
		s.Mul(aug, aug.T())

		tm := mat.NewDense(len(targets), len(docs), nil)
		for i, d := range targets {
			tm.SetRow(i, mat.Row(nil, d, x))
		}
		var p mat.Dense
		p.Mul(tm, aug.T())

		st := acc.Stats(f.Index)
		assert.True(t, mat.EqualApprox(&s, st.Scatter, 1e-9), "fold %d scatter", f.Index)
		assert.True(t, mat.EqualApprox(&p, st.P, 1e-9), "fold %d P", f.Index)
	}
}

func TestScatterIsSymmetricAndChunkSizeIndependent(t *testing.T) {
	const dim = 10
	docs := dataset.NewRandomSparse(50, dim, 0.3, 4, newRand(11))
	folds := mda.Partition(newRand(12).Perm(dim), 3)
	targets := []int{0, 1, 2}

	small := accumulate(t, docs, folds, dim, targets, 7)
	whole := accumulate(t, docs, folds, dim, targets, 50)
	assert.Equal(t, 8, small.Chunks())
	assert.Equal(t, 1, whole.Chunks())

	for _, f := range folds {
		a, b := small.Stats(f.Index), whole.Stats(f.Index)
		n := a.Scatter.SymmetricDim()
		assert.Equal(t, f.Size()+1, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				assert.Equal(t, a.Scatter.At(i, j), a.Scatter.At(j, i))
			}
		}
		rows, cols := a.P.Dims()
		assert.Equal(t, 3, rows)
		assert.Equal(t, f.Size()+1, cols)

		assert.True(t, mat.EqualApprox(a.Scatter, b.Scatter, 1e-9))
		assert.True(t, mat.EqualApprox(a.P, b.P, 1e-9))
	}
}

func TestAccumulatorRejectsMissingTarget(t *testing.T) {
	docs := []corpus.Document{{{ID: 0, Count: 1}}}
	dual, err := chunk.NewDual(corpus.FromSlice(docs), 2, nil, 1)
	require.NoError(t, err)

	acc := mda.NewAccumulator(mda.Partition([]int{0, 1}, 1), mda.SupervisedReduction, 1)
	for p, err := range dual.All() {
		require.NoError(t, err)
		assert.Error(t, acc.Add(p))
	}
}
