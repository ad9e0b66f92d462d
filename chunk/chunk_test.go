package chunk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw965/mda/chunk"
	"github.com/sw965/mda/corpus"
	"gonum.org/v1/gonum/mat"
)

var docs = []corpus.Document{
	{{ID: 0, Count: 1}, {ID: 2, Count: 3}},
	{{ID: 1, Count: 2}},
	{{ID: 3, Count: 1}, {ID: 0, Count: 4}},
}

func TestDualWithTargets(t *testing.T) {
	dual, err := chunk.NewDual(corpus.FromSlice(docs), 4, []int{2, 0}, 2)
	require.NoError(t, err)

	pairs := make([]chunk.Pair, 0)
	for p, err := range dual.All() {
		require.NoError(t, err)
		pairs = append(pairs, p)
	}
	require.Len(t, pairs, 2)
	assert.Equal(t, 2, pairs[0].Docs())
	assert.Equal(t, 1, pairs[1].Docs())
	assert.Equal(t, 1, pairs[1].Index)

	expected := mat.NewDense(2, 2, []float64{
		3, 0,
		1, 0,
	})
	assert.True(t, mat.Equal(expected, pairs[0].Target))
	assert.Equal(t, 4.0, pairs[1].Target.At(1, 0))
}

func TestDualWithoutTargets(t *testing.T) {
	dual, err := chunk.NewDual(corpus.FromSlice(docs), 4, nil, 10)
	require.NoError(t, err)

	n := 0
	for p, err := range dual.All() {
		require.NoError(t, err)
		assert.Nil(t, p.Target)
		rows, cols := p.Full.Dims()
		assert.Equal(t, 4, rows)
		assert.Equal(t, 3, cols)
		n++
	}
	assert.Equal(t, 1, n)
}

func TestDualIsNotRestartable(t *testing.T) {
	dual, err := chunk.NewDual(corpus.FromSlice(docs), 4, nil, 1)
	require.NoError(t, err)
	for range dual.All() {
	}

	var got error
	for _, err := range dual.All() {
		got = err
	}
	assert.ErrorIs(t, got, chunk.ErrConsumed)
}

func TestDualMalformedDocument(t *testing.T) {
	bad := append([]corpus.Document{}, docs...)
	bad = append(bad, corpus.Document{{ID: 9, Count: 1}})
	dual, err := chunk.NewDual(corpus.FromSlice(bad), 4, nil, 3)
	require.NoError(t, err)

	yielded := 0
	var got error
	for _, err := range dual.All() {
		if err != nil {
			got = err
			break
		}
		yielded++
	}
	assert.Equal(t, 1, yielded)
	assert.ErrorIs(t, got, corpus.ErrTermRange)
}

func TestNewDualRejectsChunkSize(t *testing.T) {
	_, err := chunk.NewDual(corpus.FromSlice(docs), 4, nil, 0)
	assert.ErrorIs(t, err, chunk.ErrChunkSize)
}
