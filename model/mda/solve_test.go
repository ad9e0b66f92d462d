package mda_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw965/mda/model/mda"
	"gonum.org/v1/gonum/mat"
)

var exampleScatter = mat.NewSymDense(3, []float64{
	1, 2, 1,
	2, 13, 5,
	1, 5, 2,
})

func TestCorruptScatterWithoutNoise(t *testing.T) {
	q := mda.CorruptScatter(exampleScatter, 0)
	assert.True(t, mat.Equal(exampleScatter, q))
}

func TestCorruptScatter(t *testing.T) {
	q := mda.CorruptScatter(exampleScatter, 0.5)
	expected := mat.NewSymDense(3, []float64{
		0.5, 0.5, 2,
		0.5, 6.5, 10,
		2, 10, 2,
	})
	assert.True(t, mat.EqualApprox(expected, q, 1e-15))
}

// randomScatter returns the scatter of n random augmented vectors in r dims.
func randomScatter(r, n int, seed int64) *mat.SymDense {
	rng := newRand(seed)
	x := mat.NewDense(r+1, n, nil)
	for j := 0; j < n; j++ {
		for i := 0; i < r; i++ {
			x.Set(i, j, rng.NormFloat64())
		}
		x.Set(r, j, 1)
	}
	s := mat.NewSymDense(r+1, nil)
	s.SymRankK(s, 1, x)
	return s
}

func TestSolveWeightsReconstructsWithoutNoise(t *testing.T) {
	s := randomScatter(4, 40, 3)
	w, err := mda.SolveWeights(mda.SelfReconstruction, s, nil, 0, 0)
	require.NoError(t, err)

	rows, cols := w.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 5, cols)

	// the exact least squares reconstruction of x from [x; 1] is [I 0].
	expected := mat.NewDense(4, 5, []float64{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	})
	assert.True(t, mat.EqualApprox(expected, w, 1e-8))
}

func TestSupervisedWeightsWithoutNoise(t *testing.T) {
	s := randomScatter(3, 30, 4)
	p := mat.NewDense(2, 4, []float64{
		3, -1, 0.5, 2,
		0, 4, 1, -3,
	})
	w, err := mda.SolveWeights(mda.SupervisedReduction, s, p, 0, 0)
	require.NoError(t, err)

	// s has full rank, so its pseudo-inverse is the inverse.
	var inv mat.Dense
	require.NoError(t, inv.Inverse(s))
	var expected mat.Dense
	expected.Mul(p, &inv)
	assert.True(t, mat.EqualApprox(&expected, w, 1e-8))
}

func TestSolveWeightsSatisfiesNormalEquations(t *testing.T) {
	const noise, lambda = 0.3, 0.5
	s := randomScatter(3, 25, 5)
	p := mat.NewDense(2, 4, []float64{
		1, 2, 3, 4,
		-1, 0, 1, 2,
	})
	w, err := mda.SolveWeights(mda.SupervisedReduction, s, p, noise, lambda)
	require.NoError(t, err)

	a := mat.DenseCopyOf(mda.CorruptScatter(s, noise))
	for i := 0; i < 3; i++ {
		a.Set(i, i, a.At(i, i)+lambda)
	}
	target := mat.DenseCopyOf(p)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			target.Set(i, j, target.At(i, j)*(1-noise))
		}
	}

	var got mat.Dense
	got.Mul(w, a)
	assert.True(t, mat.EqualApprox(target, &got, 1e-9))
}

func TestSolveWeightsSingular(t *testing.T) {
	// dimension 1 never occurs, so the unregularized system is singular.
	s := mat.NewSymDense(3, []float64{
		5, 0, 3,
		0, 0, 0,
		3, 0, 4,
	})
	w, err := mda.SolveWeights(mda.SelfReconstruction, s, nil, 0, 0)
	require.NoError(t, err)

	rows, cols := w.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 3, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.False(t, math.IsNaN(w.At(i, j)))
		}
		assert.InDelta(t, 0, w.At(i, 1), 1e-12)
		assert.InDelta(t, 0, w.At(1, i), 1e-12)
	}
	assert.InDelta(t, 1, w.At(0, 0), 1e-9)
	assert.InDelta(t, 0, w.At(0, 2), 1e-9)
}

func TestSolveWeightsRejectsBadArguments(t *testing.T) {
	_, err := mda.SolveWeights(mda.SelfReconstruction, exampleScatter, nil, 1, 0)
	assert.ErrorIs(t, err, mda.ErrConfig)

	_, err = mda.SolveWeights(mda.SelfReconstruction, exampleScatter, nil, 0, -1)
	assert.ErrorIs(t, err, mda.ErrConfig)

	_, err = mda.SolveWeights(mda.SupervisedReduction, exampleScatter, mat.NewDense(2, 2, nil), 0, 0)
	assert.ErrorIs(t, err, mat.ErrShape)

	_, err = mda.SolveWeights(mda.SupervisedReduction, exampleScatter, nil, 0, 0)
	assert.ErrorIs(t, err, mda.ErrMissingTargets)

	_, err = mda.SolveWeights(mda.Mode(7), exampleScatter, nil, 0, 0)
	assert.ErrorIs(t, err, mda.ErrConfig)
}
