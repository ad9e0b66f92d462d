package mda

import (
	"fmt"
	"iter"

	"github.com/sw965/mda/blas64/tensor/2d"
	"github.com/sw965/mda/corpus"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// hidden maps the InputDim×n matrix x to the OutputDim×n representation.
func (l *Layer) hidden(x mat.Matrix) (blas64.General, error) {
	if l.state != Trained {
		return blas64.General{}, ErrNotTrained
	}
	rows, _ := x.Dims()
	if rows != l.inputDim {
		return blas64.General{}, fmt.Errorf("mda: input has %d rows, layer expects %d: %w", rows, l.inputDim, mat.ErrShape)
	}

	var avg blas64.General
	for k, fold := range l.folds {
		aug := tensor2d.AugmentRows(x, fold.Dims)
		h := tensor2d.Dot(blas.NoTrans, blas.NoTrans, l.weights[k].RawMatrix(), aug)
		if k == 0 {
			avg = h
			continue
		}
		// avg += (h - avg) / (k+1)
		tensor2d.Axpy(-1, avg, h)
		tensor2d.Axpy(1/float64(k+1), h, avg)
	}
	tensor2d.Tanh(avg)
	return avg, nil
}

// Dense transforms the columns of the InputDim×n matrix x.
func (l *Layer) Dense(x mat.Matrix) (*mat.Dense, error) {
	h, err := l.hidden(x)
	if err != nil {
		return nil, err
	}
	return tensor2d.ToDense(h), nil
}

// Sparse transforms the columns of x into sparse documents.
func (l *Layer) Sparse(x mat.Matrix) ([]corpus.Document, error) {
	h, err := l.Dense(x)
	if err != nil {
		return nil, err
	}
	_, n := h.Dims()
	docs := make([]corpus.Document, n)
	for j := range docs {
		docs[j] = corpus.FromVector(mat.Col(nil, j, h), corpus.DefaultEps)
	}
	return docs, nil
}

// CorpusDense lazily transforms c, densifying chunkSize documents at a time.
// A chunkSize <= 0 transforms one document at a time.
func (l *Layer) CorpusDense(c corpus.Corpus, chunkSize int) iter.Seq2[[]float64, error] {
	return func(yield func([]float64, error) bool) {
		if l.state != Trained {
			yield(nil, ErrNotTrained)
			return
		}
		for docs, err := range corpus.Grouper(c, max(chunkSize, 1)) {
			if err != nil {
				yield(nil, err)
				return
			}
			x, err := corpus.ToDense(docs, l.inputDim)
			if err != nil {
				yield(nil, err)
				return
			}
			h, err := l.hidden(x)
			if err != nil {
				yield(nil, err)
				return
			}
			d := tensor2d.ToDense(h)
			for j := range docs {
				if !yield(mat.Col(nil, j, d), nil) {
					return
				}
			}
		}
	}
}

// Corpus is CorpusDense with sparse output.
func (l *Layer) Corpus(c corpus.Corpus, chunkSize int) iter.Seq2[corpus.Document, error] {
	return func(yield func(corpus.Document, error) bool) {
		for vec, err := range l.CorpusDense(c, chunkSize) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(corpus.FromVector(vec, corpus.DefaultEps), nil) {
				return
			}
		}
	}
}

func (l *Layer) DocumentDense(doc corpus.Document) ([]float64, error) {
	x, err := corpus.ToDense([]corpus.Document{doc}, l.inputDim)
	if err != nil {
		return nil, err
	}
	h, err := l.hidden(x)
	if err != nil {
		return nil, err
	}
	return h.Data, nil
}

func (l *Layer) Document(doc corpus.Document) (corpus.Document, error) {
	vec, err := l.DocumentDense(doc)
	if err != nil {
		return nil, err
	}
	return corpus.FromVector(vec, corpus.DefaultEps), nil
}
