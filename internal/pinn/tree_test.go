package pinn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipReduce(t *testing.T) {
	a := map[string]float32{"x": 1, "y": 2}
	b := map[string]float32{"x": 10, "y": 20}

	out, err := ZipReduce(a, b, func(p, q float32) float32 { return p + q })
	require.NoError(t, err)
	assert.Equal(t, map[string]float32{"x": 11, "y": 22}, out)
}

func TestZipReduceKeyMismatch(t *testing.T) {
	a := map[string]float32{"x": 1}
	b := map[string]float32{"y": 2}

	_, err := ZipReduce(a, b, func(p, q float32) float32 { return p + q })
	assert.ErrorIs(t, err, ErrKeyMismatch)

	_, err = ZipReduce(map[string]float32{"x": 1, "y": 2}, a, func(p, q float32) float32 { return p })
	assert.ErrorIs(t, err, ErrKeyMismatch)
}

func TestMapValues(t *testing.T) {
	in := map[string]int{"a": 1, "b": 2}
	out := MapValues(in, func(v int) int { return v * 10 })
	assert.Equal(t, map[string]int{"a": 10, "b": 20}, out)
}

func TestParamTreeMergeDoesNotMutate(t *testing.T) {
	b := newCPU()
	tree := linearTree(t, b, 1)
	tree.Eq = map[string]*tensorLeaf{"alpha": scalarLeaf(t, b, 1)}

	batch := map[string]*tensorLeaf{"alpha": scalarLeaf(t, b, 9)}
	merged, err := tree.Merge(batch)
	require.NoError(t, err)

	assert.Equal(t, float32(1), item(tree.Eq["alpha"]))
	assert.Equal(t, float32(9), item(merged.Eq["alpha"]))
}
