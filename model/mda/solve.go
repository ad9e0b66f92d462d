package mda

import (
	"errors"
	"fmt"
	"math"

	"github.com/sw965/mda/blas64/tensor/2d"
	"gonum.org/v1/gonum/mat"
)

var ErrFactorize = errors.New("mda: singular value decomposition did not converge")

// CorruptScatter returns the corrupted second moment of the augmented input
// when every non-bias feature is zeroed independently with probability noise.
// The bias is the last row and column of s; its cross terms are S/(1-noise).
func CorruptScatter(s mat.Symmetric, noise float64) *mat.SymDense {
	n := s.SymmetricDim()
	bias := n - 1
	keep := 1 - noise

	q := mat.NewSymDense(n, nil)
	q.ScaleSym(keep*keep, s)
	// bias row and column are the raw cross terms scaled back by 1/keep.
	for i := 0; i < bias; i++ {
		q.SetSym(i, bias, s.At(i, bias)/keep)
	}
	q.SetSym(bias, bias, q.At(bias, bias)/(keep*keep))
	// E[x_c^2] = keep * x^2 on the diagonal.
	for i := 0; i < bias; i++ {
		q.SetSym(i, i, s.At(i, i)*keep)
	}
	q.SetSym(bias, bias, s.At(bias, bias))
	return q
}

func validateNoise(noise, lambda float64) error {
	if math.IsNaN(noise) || noise < 0 || noise >= 1 {
		return fmt.Errorf("%w: noise %v not in [0, 1)", ErrConfig, noise)
	}
	if math.IsNaN(lambda) || lambda < 0 {
		return fmt.Errorf("%w: lambda %v is negative", ErrConfig, lambda)
	}
	return nil
}

// SolveWeights derives the weights of one fold from its statistics. In
// SelfReconstruction mode p is ignored and the fold reconstructs its own
// input; SupervisedReduction requires the cross moment p. The system is solved
// in the minimum norm least squares sense, so a singular scatter is not an
// error.
func SolveWeights(mode Mode, scatter mat.Symmetric, p *mat.Dense, noise, lambda float64) (*mat.Dense, error) {
	if err := validateNoise(noise, lambda); err != nil {
		return nil, err
	}
	n := scatter.SymmetricDim()
	bias := n - 1
	if bias < 1 {
		return nil, fmt.Errorf("mda: scatter of size %d has no input dimensions: %w", n, mat.ErrShape)
	}

	var target *mat.Dense
	switch mode {
	case SelfReconstruction:
		target = mat.DenseCopyOf(scatter).Slice(0, bias, 0, n).(*mat.Dense)
	case SupervisedReduction:
		if p == nil {
			return nil, fmt.Errorf("%w: fold has no cross moment", ErrMissingTargets)
		}
		if _, c := p.Dims(); c != n {
			return nil, fmt.Errorf("mda: cross moment has %d columns, want %d: %w", c, n, mat.ErrShape)
		}
		target = mat.DenseCopyOf(p)
	default:
		return nil, fmt.Errorf("%w: unknown mode %s", ErrConfig, mode)
	}
	keep := 1 - noise
	target.Apply(func(_, j int, v float64) float64 {
		if j == bias {
			return v
		}
		return v * keep
	}, target)

	a := CorruptScatter(scatter, noise)
	for i := 0; i < bias; i++ {
		a.SetSym(i, i, a.At(i, i)+lambda)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, ErrFactorize
	}
	rows, _ := target.Dims()
	rank := svd.Rank(float64(n) * eps)
	if rank == 0 {
		return mat.NewDense(rows, n, nil), nil
	}

	// a is symmetric: W a = P  <=>  a W^T = P^T.
	var wt mat.Dense
	svd.SolveTo(&wt, target.T(), rank)
	return tensor2d.ToDense(tensor2d.Transpose(wt.RawMatrix())), nil
}

const eps = 0x1p-52
