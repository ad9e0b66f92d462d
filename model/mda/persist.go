package mda

import (
	"encoding/gob"
	"fmt"
	"io"
	"slices"

	"gonum.org/v1/gonum/mat"
)

type snapshot struct {
	Noise       float64
	Lambda      float64
	InputDim    int
	OutputDim   int
	TargetDims  []int
	Permutation []int
	Weights     [][]byte
}

// Save writes the configuration, permutation and fold weights of a trained
// layer.
func (l *Layer) Save(w io.Writer) error {
	if l.state != Trained {
		return ErrNotTrained
	}
	snap := snapshot{
		Noise:       l.noise,
		Lambda:      l.lambda,
		InputDim:    l.inputDim,
		OutputDim:   l.outputDim,
		TargetDims:  l.targets,
		Permutation: l.perm,
		Weights:     make([][]byte, len(l.weights)),
	}
	for i, weight := range l.weights {
		b, err := weight.MarshalBinary()
		if err != nil {
			return fmt.Errorf("mda: fold %d: %w", i, err)
		}
		snap.Weights[i] = b
	}
	return gob.NewEncoder(w).Encode(&snap)
}

// Load reads a layer written by Save. The returned layer is trained.
func Load(r io.Reader, observer Observer) (*Layer, error) {
	var snap snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("mda: decode layer: %w", err)
	}

	cfg := Config{
		Noise:      snap.Noise,
		Lambda:     snap.Lambda,
		InputDim:   snap.InputDim,
		OutputDim:  snap.OutputDim,
		TargetDims: snap.TargetDims,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.OutputDim == 0 {
		return nil, fmt.Errorf("%w: output dimensionality 0", ErrConfig)
	}
	if !isPermutation(snap.Permutation, snap.InputDim) {
		return nil, fmt.Errorf("%w: stored permutation does not cover %d dimensions", ErrConfig, snap.InputDim)
	}
	if observer == nil {
		observer = NopObserver{}
	}

	folds := Partition(snap.Permutation, cfg.OutputDim)
	if len(snap.Weights) != len(folds) {
		return nil, fmt.Errorf("mda: %d stored folds, want %d", len(snap.Weights), len(folds))
	}
	weights := make([]*mat.Dense, len(folds))
	for i, b := range snap.Weights {
		var w mat.Dense
		if err := w.UnmarshalBinary(b); err != nil {
			return nil, fmt.Errorf("mda: fold %d: %w", i, err)
		}
		rows, cols := w.Dims()
		if rows != cfg.OutputDim || cols != folds[i].Size()+1 {
			return nil, fmt.Errorf("mda: fold %d weights are %dx%d, want %dx%d: %w", i, rows, cols, cfg.OutputDim, folds[i].Size()+1, mat.ErrShape)
		}
		weights[i] = &w
	}

	return &Layer{
		noise:     cfg.Noise,
		lambda:    cfg.Lambda,
		inputDim:  cfg.InputDim,
		outputDim: cfg.OutputDim,
		targets:   slices.Clone(cfg.TargetDims),
		mode:      cfg.mode(),
		perm:      snap.Permutation,
		folds:     folds,
		weights:   weights,
		state:     Trained,
		observer:  observer,
	}, nil
}
