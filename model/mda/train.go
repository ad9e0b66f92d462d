package mda

import (
	"fmt"

	"github.com/sw965/mda/chunk"
	"github.com/sw965/mda/corpus"
	"gonum.org/v1/gonum/mat"
)

// Train makes a single pass over c, chunkSize documents at a time, and solves
// the weights of every fold. It may only be called once. If the pass fails
// the layer enters the Failed state and must be discarded.
func (l *Layer) Train(c corpus.Corpus, chunkSize int) error {
	if l.state != Untrained {
		return fmt.Errorf("%w: state is %s", ErrAlreadyTrained, l.state)
	}
	if l.mode == SupervisedReduction && l.targets == nil {
		return ErrMissingTargets
	}
	dual, err := chunk.NewDual(c, l.inputDim, l.targets, chunkSize)
	if err != nil {
		return err
	}

	l.state = Training
	info := l.info()
	l.observer.TrainingStarted(info)

	acc := NewAccumulator(l.folds, l.mode, len(l.targets))
	for pair, err := range dual.All() {
		if err != nil {
			l.state = Failed
			return fmt.Errorf("mda: training aborted: %w", err)
		}
		if err := acc.Add(pair); err != nil {
			l.state = Failed
			return fmt.Errorf("mda: training aborted: %w", err)
		}
		l.observer.ChunkProcessed(acc.Chunks(), acc.Documents())
	}
	if acc.Documents() == 0 {
		l.state = Failed
		return ErrEmptyCorpus
	}

	weights := make([]*mat.Dense, 0, len(l.folds))
	for f := range l.folds {
		st := acc.Stats(f)
		w, err := SolveWeights(l.mode, st.Scatter, st.P, l.noise, l.lambda)
		if err != nil {
			l.state = Failed
			return fmt.Errorf("mda: fold %d: %w", f, err)
		}
		weights = append(weights, w)
		l.observer.FoldSolved(f+1, len(l.folds))
	}

	l.weights = weights
	l.state = Trained
	info.Chunks = acc.Chunks()
	info.Documents = acc.Documents()
	l.observer.TrainingFinished(info)
	return nil
}
