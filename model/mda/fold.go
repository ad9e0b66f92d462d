package mda

import (
	"math/rand"
	"slices"
)

// Fold is one block of input dimensions with its own weight matrix.
type Fold struct {
	Index int
	Dims  []int
}

// Size returns r, the number of input dimensions in the fold.
func (f Fold) Size() int {
	return len(f.Dims)
}

func NumFolds(inputDim, outputDim int) int {
	return (inputDim + outputDim - 1) / outputDim
}

// Partition splits perm into consecutive folds of size dims. The last fold
// holds the remainder.
func Partition(perm []int, size int) []Fold {
	n := NumFolds(len(perm), size)
	folds := make([]Fold, n)
	for i := range folds {
		end := min((i+1)*size, len(perm))
		folds[i] = Fold{Index: i, Dims: slices.Clone(perm[i*size : end])}
	}
	return folds
}

// newPermutation returns the identity order when no reduction takes place.
func newPermutation(inputDim, outputDim int, rng *rand.Rand) []int {
	if inputDim == outputDim {
		perm := make([]int, inputDim)
		for i := range perm {
			perm[i] = i
		}
		return perm
	}
	return rng.Perm(inputDim)
}

func isPermutation(perm []int, n int) bool {
	if len(perm) != n {
		return false
	}
	seen := make([]bool, n)
	for _, e := range perm {
		if e < 0 || e >= n || seen[e] {
			return false
		}
		seen[e] = true
	}
	return true
}
