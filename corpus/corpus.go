package corpus

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/sw965/mda/blas64/sparse"
	"gonum.org/v1/gonum/mat"
)

// DefaultEps is the magnitude under which FromVector drops an entry.
const DefaultEps = 1e-9

var ErrTermRange = errors.New("corpus: term id out of range")

type Term struct {
	ID    int
	Count float64
}

// Document is a sparse term-count vector.
type Document []Term

// Corpus is a finite sequence of documents. It may be single-pass: ranging
// over it a second time is allowed to yield nothing or an error.
type Corpus iter.Seq2[Document, error]

func FromSlice(docs []Document) Corpus {
	return func(yield func(Document, error) bool) {
		for _, doc := range docs {
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// Collect drains c into memory.
func Collect(c Corpus) ([]Document, error) {
	docs := make([]Document, 0)
	for doc, err := range c {
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Grouper yields consecutive groups of size documents. The last group may be
// shorter. Iteration stops at the first error, which is yielded with a nil
// group.
func Grouper(c Corpus, size int) iter.Seq2[[]Document, error] {
	return func(yield func([]Document, error) bool) {
		if size <= 0 {
			yield(nil, fmt.Errorf("corpus: group size must be positive, got %d", size))
			return
		}
		group := make([]Document, 0, size)
		for doc, err := range c {
			if err != nil {
				yield(nil, err)
				return
			}
			group = append(group, doc)
			if len(group) == size {
				if !yield(group, nil) {
					return
				}
				group = make([]Document, 0, size)
			}
		}
		if len(group) != 0 {
			yield(group, nil)
		}
	}
}

func (doc Document) validate(numTerms int) error {
	for _, t := range doc {
		if t.ID < 0 || t.ID >= numTerms {
			return fmt.Errorf("%w: %d not in [0, %d)", ErrTermRange, t.ID, numTerms)
		}
	}
	return nil
}

// Dense returns doc as a vector of length numTerms. Repeated ids are summed.
func (doc Document) Dense(numTerms int) ([]float64, error) {
	if err := doc.validate(numTerms); err != nil {
		return nil, err
	}
	vec := make([]float64, numTerms)
	for _, t := range doc {
		vec[t.ID] += t.Count
	}
	return vec, nil
}

// ToCSC builds the numTerms×len(docs) matrix whose j-th column is docs[j].
func ToCSC(docs []Document, numTerms int) (*sparse.CSC, error) {
	nnz := 0
	for _, doc := range docs {
		nnz += len(doc)
	}
	indptr := make([]int, len(docs)+1)
	ind := make([]int, 0, nnz)
	data := make([]float64, 0, nnz)
	for j, doc := range docs {
		if err := doc.validate(numTerms); err != nil {
			return nil, fmt.Errorf("document %d: %w", j, err)
		}
		terms := slices.Clone(doc)
		slices.SortFunc(terms, func(a, b Term) int { return a.ID - b.ID })
		for _, t := range terms {
			if n := len(ind); n > indptr[j] && ind[n-1] == t.ID {
				data[n-1] += t.Count
				continue
			}
			ind = append(ind, t.ID)
			data = append(data, t.Count)
		}
		indptr[j+1] = len(data)
	}
	return sparse.NewCSC(numTerms, len(docs), indptr, ind, data)
}

// ToDense builds the numTerms×len(docs) dense matrix whose j-th column is docs[j].
func ToDense(docs []Document, numTerms int) (*mat.Dense, error) {
	if numTerms <= 0 || len(docs) == 0 {
		return nil, fmt.Errorf("corpus: cannot densify %d documents into %d terms: %w", len(docs), numTerms, mat.ErrZeroLength)
	}
	d := mat.NewDense(numTerms, len(docs), nil)
	for j, doc := range docs {
		if err := doc.validate(numTerms); err != nil {
			return nil, fmt.Errorf("document %d: %w", j, err)
		}
		for _, t := range doc {
			d.Set(t.ID, j, d.At(t.ID, j)+t.Count)
		}
	}
	return d, nil
}

// FromVector converts a dense vector to a Document, dropping entries whose
// magnitude is below eps.
func FromVector(vec []float64, eps float64) Document {
	doc := make(Document, 0)
	for i, v := range vec {
		if math.Abs(v) < eps {
			continue
		}
		doc = append(doc, Term{ID: i, Count: v})
	}
	return doc
}
