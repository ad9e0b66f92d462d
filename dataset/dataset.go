package dataset

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/sw965/mda/corpus"
	"gonum.org/v1/gonum/mat"
)

const EXTENSION = ".gob"

// Write encodes docs one by one so that Stream can decode them without
// holding the corpus in memory.
func Write(w io.Writer, docs corpus.Corpus) (int, error) {
	enc := gob.NewEncoder(w)
	n := 0
	for doc, err := range docs {
		if err != nil {
			return n, err
		}
		if err := enc.Encode(doc); err != nil {
			return n, fmt.Errorf("dataset: encode document %d: %w", n, err)
		}
		n++
	}
	return n, nil
}

func Save(path string, docs corpus.Corpus) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := Write(f, docs)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Stream decodes documents written by Write. The returned corpus is
// single-pass: it consumes r.
func Stream(ctx context.Context, r io.Reader) corpus.Corpus {
	dec := gob.NewDecoder(r)
	return func(yield func(corpus.Document, error) bool) {
		for i := 0; ; i++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			var doc corpus.Document
			err := dec.Decode(&doc)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("dataset: decode document %d: %w", i, err))
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// Load reopens path on every iteration, so the corpus can be walked more than
// once.
func Load(ctx context.Context, path string) corpus.Corpus {
	return func(yield func(corpus.Document, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(nil, err)
			return
		}
		defer f.Close()
		for doc, err := range Stream(ctx, f) {
			if !yield(doc, err) || err != nil {
				return
			}
		}
	}
}

// FromDense returns the columns of x as documents.
func FromDense(x mat.Matrix) []corpus.Document {
	_, n := x.Dims()
	docs := make([]corpus.Document, n)
	for j := range docs {
		docs[j] = corpus.FromVector(mat.Col(nil, j, x), corpus.DefaultEps)
	}
	return docs
}

// NewRandomSparse returns n documents over dim terms. Each term is present
// with probability density and has a count in [1, maxCount].
func NewRandomSparse(n, dim int, density float64, maxCount int, rng *rand.Rand) []corpus.Document {
	docs := make([]corpus.Document, n)
	for i := range docs {
		doc := make(corpus.Document, 0)
		for id := 0; id < dim; id++ {
			if rng.Float64() < density {
				doc = append(doc, corpus.Term{ID: id, Count: float64(1 + rng.Intn(maxCount))})
			}
		}
		docs[i] = doc
	}
	return docs
}
