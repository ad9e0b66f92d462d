// Package mda implements a marginalized denoising autoencoder layer: a linear
// transform solved in closed form from corrupted-input statistics, optionally
// reducing the input onto a chosen set of target dimensions.
//
// Training makes exactly one pass over the corpus. Every input dimension is
// assigned to one fold of at most OutputDim dimensions; each fold accumulates
// a scatter matrix of its bias-augmented inputs (and a cross moment with the
// targets when reducing) and is solved independently. At inference the fold
// outputs are averaged and squashed with tanh.
package mda

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/seehuhn/mt19937"
	"github.com/sw965/mda/blas64/tensor/2d"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrConfig         = errors.New("mda: invalid configuration")
	ErrMissingTargets = errors.New("mda: need target dimensions to train a reduction layer")
	ErrAlreadyTrained = errors.New("mda: layer is not untrained")
	ErrNotTrained     = errors.New("mda: layer is not trained")
	ErrEmptyCorpus    = errors.New("mda: corpus has no documents")
)

type Mode int

const (
	// SelfReconstruction trains every fold to reconstruct its own input.
	SelfReconstruction Mode = iota
	// SupervisedReduction trains every fold to predict the target dimensions.
	SupervisedReduction
)

func (m Mode) String() string {
	switch m {
	case SelfReconstruction:
		return "self-reconstruction"
	case SupervisedReduction:
		return "supervised-reduction"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

type State int

const (
	Untrained State = iota
	Training
	Trained
	// Failed is entered when a training pass aborts. The layer cannot be
	// reused because the corpus may not be replayable.
	Failed
)

func (s State) String() string {
	switch s {
	case Untrained:
		return "untrained"
	case Training:
		return "training"
	case Trained:
		return "trained"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Config struct {
	Noise  float64
	Lambda float64

	InputDim int
	// OutputDim defaults to InputDim.
	OutputDim int
	// TargetDims are the input dimensions predicted by a reduction layer.
	TargetDims []int

	// Rand draws the dimension permutation. Defaults to a time-seeded
	// Mersenne Twister.
	Rand     *rand.Rand
	Observer Observer
}

type Layer struct {
	noise     float64
	lambda    float64
	inputDim  int
	outputDim int
	targets   []int
	mode      Mode

	perm    []int
	folds   []Fold
	weights []*mat.Dense
	state   State

	observer Observer
}

func newRand() *rand.Rand {
	rng := rand.New(mt19937.New())
	rng.Seed(time.Now().UnixNano())
	return rng
}

func (c *Config) validate() error {
	if c.InputDim <= 0 {
		return fmt.Errorf("%w: input dimensionality %d", ErrConfig, c.InputDim)
	}
	if c.OutputDim < 0 || c.OutputDim > c.InputDim {
		return fmt.Errorf("%w: output dimensionality %d not in [1, %d]", ErrConfig, c.OutputDim, c.InputDim)
	}
	if err := validateNoise(c.Noise, c.Lambda); err != nil {
		return err
	}
	if c.TargetDims == nil {
		return nil
	}
	if len(c.TargetDims) != c.OutputDim {
		return fmt.Errorf("%w: %d target dimensions for output dimensionality %d", ErrConfig, len(c.TargetDims), c.OutputDim)
	}
	seen := make(map[int]bool, len(c.TargetDims))
	for _, d := range c.TargetDims {
		if d < 0 || d >= c.InputDim {
			return fmt.Errorf("%w: target dimension %d not in [0, %d)", ErrConfig, d, c.InputDim)
		}
		if seen[d] {
			return fmt.Errorf("%w: duplicate target dimension %d", ErrConfig, d)
		}
		seen[d] = true
	}
	return nil
}

func (c *Config) mode() Mode {
	if c.OutputDim != c.InputDim || c.TargetDims != nil {
		return SupervisedReduction
	}
	return SelfReconstruction
}

func New(cfg Config) (*Layer, error) {
	if cfg.OutputDim == 0 {
		cfg.OutputDim = cfg.InputDim
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}
	if cfg.Rand == nil {
		cfg.Rand = newRand()
	}

	mode := cfg.mode()
	if mode == SupervisedReduction && cfg.TargetDims == nil {
		cfg.Observer.Warn("Need prototype IDs to train reduction layer.")
	}

	perm := newPermutation(cfg.InputDim, cfg.OutputDim, cfg.Rand)
	return &Layer{
		noise:     cfg.Noise,
		lambda:    cfg.Lambda,
		inputDim:  cfg.InputDim,
		outputDim: cfg.OutputDim,
		targets:   slices.Clone(cfg.TargetDims),
		mode:      mode,
		perm:      perm,
		folds:     Partition(perm, cfg.OutputDim),
		observer:  cfg.Observer,
	}, nil
}

func (l *Layer) InputDim() int {
	return l.inputDim
}

func (l *Layer) OutputDim() int {
	return l.outputDim
}

func (l *Layer) Mode() Mode {
	return l.mode
}

func (l *Layer) State() State {
	return l.state
}

func (l *Layer) NumFolds() int {
	return len(l.folds)
}

func (l *Layer) Folds() []Fold {
	folds := make([]Fold, len(l.folds))
	for i, f := range l.folds {
		folds[i] = Fold{Index: f.Index, Dims: slices.Clone(f.Dims)}
	}
	return folds
}

func (l *Layer) Permutation() []int {
	return slices.Clone(l.perm)
}

// Weights returns a copy of the weights of fold f.
func (l *Layer) Weights(f int) (*mat.Dense, error) {
	if l.state != Trained {
		return nil, ErrNotTrained
	}
	if f < 0 || f >= len(l.weights) {
		return nil, fmt.Errorf("mda: fold %d not in [0, %d)", f, len(l.weights))
	}
	return tensor2d.ToDense(tensor2d.Clone(l.weights[f].RawMatrix())), nil
}

func (l *Layer) info() TrainInfo {
	return TrainInfo{
		InputDim:  l.inputDim,
		OutputDim: l.outputDim,
		NumFolds:  len(l.folds),
		Mode:      l.mode,
	}
}
