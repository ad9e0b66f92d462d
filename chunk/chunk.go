// Package chunk streams a corpus as fixed-size sparse matrices, optionally
// paired with their restriction to a set of target dimensions.
package chunk

import (
	"errors"
	"fmt"
	"iter"

	"github.com/sw965/mda/blas64/sparse"
	"github.com/sw965/mda/corpus"
)

var (
	ErrConsumed  = errors.New("chunk: corpus already consumed")
	ErrChunkSize = errors.New("chunk: chunk size must be positive")
)

type Pair struct {
	Index int
	// Full is numTerms×n, n being the number of documents in the chunk.
	Full *sparse.CSC
	// Target is Full restricted to the target rows, nil without targets.
	Target *sparse.CSC
}

// Docs returns the number of documents in the chunk.
func (p Pair) Docs() int {
	_, n := p.Full.Dims()
	return n
}

type Dual struct {
	corpus   corpus.Corpus
	numTerms int
	targets  []int
	size     int
	consumed bool
}

func NewDual(c corpus.Corpus, numTerms int, targets []int, size int) (*Dual, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrChunkSize, size)
	}
	return &Dual{
		corpus:   c,
		numTerms: numTerms,
		targets:  targets,
		size:     size,
	}, nil
}

// All walks the corpus once, left to right. A second call yields ErrConsumed.
func (d *Dual) All() iter.Seq2[Pair, error] {
	return func(yield func(Pair, error) bool) {
		if d.consumed {
			yield(Pair{}, ErrConsumed)
			return
		}
		d.consumed = true

		i := 0
		for docs, err := range corpus.Grouper(d.corpus, d.size) {
			if err != nil {
				yield(Pair{}, err)
				return
			}
			full, err := corpus.ToCSC(docs, d.numTerms)
			if err != nil {
				yield(Pair{}, fmt.Errorf("chunk %d: %w", i, err))
				return
			}
			pair := Pair{Index: i, Full: full}
			if d.targets != nil {
				pair.Target, err = full.SelectRows(d.targets)
				if err != nil {
					yield(Pair{}, fmt.Errorf("chunk %d: %w", i, err))
					return
				}
			}
			if !yield(pair, nil) {
				return
			}
			i++
		}
	}
}
