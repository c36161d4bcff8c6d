package pinn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopinn/gopinn/internal/data"
	"github.com/gopinn/gopinn/internal/tensor"
)

// constantModel is the test approximator u(x) = c regardless of input.
type constantModel struct {
	c    float32
	kind Kind
}

func (m constantModel) Eval(inputs []*tensor.Tensor[float32, cb], tree ParamTree[cb]) (*tensor.Tensor[float32, cb], error) {
	b := inputs[0].Backend()
	return tensor.Full(tensor.Shape{1, 1}, m.c, b), nil
}

func (m constantModel) Kind() Kind         { return m.kind }
func (m constantModel) Slice() OutputSlice { return OutputSlice{} }

// border1D builds a boundary batch of shape (points, 1, 2) with the two
// facet coordinates repeated per point.
func border1D(t *testing.T, b cb, points int, xmin, xmax float32) *tensor.Tensor[float32, cb] {
	t.Helper()
	vals := make([]float32, 0, points*2)
	for i := 0; i < points; i++ {
		vals = append(vals, xmin, xmax)
	}
	border, err := tensor.FromSlice(vals, tensor.Shape{points, 1, 2}, b)
	require.NoError(t, err)
	return border
}

func TestBoundaryTermDirichlet1D(t *testing.T) {
	b := newCPU()

	// u ≡ 2 against a zero Dirichlet condition on both facets: each
	// facet contributes MSE 4 and the facet average stays 4.
	zero := func(x *tensor.Tensor[float32, cb]) (*tensor.Tensor[float32, cb], error) {
		return tensor.Zeros[float32](tensor.Shape{1, 1}, b), nil
	}
	loss, err := NewPDEStatioLoss(PDEStatioConfig[cb]{
		Approximator: constantModel{c: 2, kind: Pointwise},
		Boundary: &BoundaryConditions[cb]{
			All: &BoundaryCondition[cb]{Kind: Dirichlet, Value: zero},
		},
	})
	require.NoError(t, err)

	interior, err := tensor.FromSlice([]float32{0.5}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)
	batch := data.PDEStatioBatch[cb]{
		Interior: interior,
		Border:   border1D(t, b, 3, 0, 1),
	}

	total, breakdown, err := loss.Evaluate(ParamTree[cb]{}, batch)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, float64(item(breakdown[TermBoundary])), 1e-6)
	assert.InDelta(t, 4.0, float64(item(total)), 1e-6)
}

func TestBoundaryTermRejectsBadFacetCount(t *testing.T) {
	b := newCPU()
	zero := func(x *tensor.Tensor[float32, cb]) (*tensor.Tensor[float32, cb], error) {
		return tensor.Zeros[float32](tensor.Shape{1, 1}, b), nil
	}
	loss, err := NewPDEStatioLoss(PDEStatioConfig[cb]{
		Approximator: constantModel{c: 2, kind: Pointwise},
		Boundary: &BoundaryConditions[cb]{
			All: &BoundaryCondition[cb]{Kind: Dirichlet, Value: zero},
		},
	})
	require.NoError(t, err)

	border, err := tensor.FromSlice([]float32{0, 0.5, 1}, tensor.Shape{1, 1, 3}, b)
	require.NoError(t, err)
	interior, err := tensor.FromSlice([]float32{0.5}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)

	_, _, err = loss.Evaluate(ParamTree[cb]{}, data.PDEStatioBatch[cb]{Interior: interior, Border: border})
	assert.ErrorIs(t, err, ErrBadFacets)
}

func TestBoundaryTermPerFacetConditions(t *testing.T) {
	b := newCPU()
	valued := func(v float32) *BoundaryCondition[cb] {
		return &BoundaryCondition[cb]{Kind: Dirichlet, Value: func(x *tensor.Tensor[float32, cb]) (*tensor.Tensor[float32, cb], error) {
			return tensor.Full(tensor.Shape{1, 1}, v, b), nil
		}}
	}

	// u ≡ 1 with targets 1 on xmin and 3 on xmax: facet MSEs 0 and 4
	// average to 2.
	loss, err := NewPDEStatioLoss(PDEStatioConfig[cb]{
		Approximator: constantModel{c: 1, kind: Pointwise},
		Boundary: &BoundaryConditions[cb]{
			PerFacet: map[string]*BoundaryCondition[cb]{
				"xmin": valued(1),
				"xmax": valued(3),
			},
		},
	})
	require.NoError(t, err)

	interior, err := tensor.FromSlice([]float32{0.5}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)
	_, breakdown, err := loss.Evaluate(ParamTree[cb]{}, data.PDEStatioBatch[cb]{
		Interior: interior,
		Border:   border1D(t, b, 2, 0, 1),
	})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, float64(item(breakdown[TermBoundary])), 1e-6)
}

func TestBoundaryTermRejectsIncompleteFacetMap(t *testing.T) {
	b := newCPU()
	zero := func(x *tensor.Tensor[float32, cb]) (*tensor.Tensor[float32, cb], error) {
		return tensor.Zeros[float32](tensor.Shape{1, 1}, b), nil
	}
	loss, err := NewPDEStatioLoss(PDEStatioConfig[cb]{
		Approximator: constantModel{c: 1, kind: Pointwise},
		Boundary: &BoundaryConditions[cb]{
			PerFacet: map[string]*BoundaryCondition[cb]{
				"xmin": {Kind: Dirichlet, Value: zero},
			},
		},
	})
	require.NoError(t, err)

	interior, err := tensor.FromSlice([]float32{0.5}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)
	_, _, err = loss.Evaluate(ParamTree[cb]{}, data.PDEStatioBatch[cb]{
		Interior: interior,
		Border:   border1D(t, b, 1, 0, 1),
	})
	assert.ErrorIs(t, err, ErrKeyMismatch)
}

func TestNeumannConditionNotImplemented(t *testing.T) {
	b := newCPU()
	zero := func(x *tensor.Tensor[float32, cb]) (*tensor.Tensor[float32, cb], error) {
		return tensor.Zeros[float32](tensor.Shape{1, 1}, b), nil
	}
	loss, err := NewPDEStatioLoss(PDEStatioConfig[cb]{
		Approximator: constantModel{c: 1, kind: Pointwise},
		Boundary: &BoundaryConditions[cb]{
			All: &BoundaryCondition[cb]{Kind: Neumann, Value: zero},
		},
	})
	require.NoError(t, err)

	interior, err := tensor.FromSlice([]float32{0.5}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)
	_, _, err = loss.Evaluate(ParamTree[cb]{}, data.PDEStatioBatch[cb]{
		Interior: interior,
		Border:   border1D(t, b, 1, 0, 1),
	})
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestNormalizationTermOneAxis(t *testing.T) {
	b := newCPU()
	samples, err := tensor.FromSlice([]float32{0.25, 0.75}, tensor.Shape{2, 1}, b)
	require.NoError(t, err)

	// u ≡ 2 over an interval of length 1 integrates to 2, deviation
	// (2 - 1)² = 1.
	loss, err := NewPDEStatioLoss(PDEStatioConfig[cb]{
		Approximator:  constantModel{c: 2, kind: Pointwise},
		Normalization: &Normalization[cb]{Samples: samples, Measure: 1},
	})
	require.NoError(t, err)

	interior, err := tensor.FromSlice([]float32{0.5}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)
	_, breakdown, err := loss.Evaluate(ParamTree[cb]{}, data.PDEStatioBatch[cb]{Interior: interior})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, float64(item(breakdown[TermNorm])), 1e-6)
}

func TestSobolevTerm(t *testing.T) {
	b := newCPU()
	reg := SobolevRegularizer[cb](func(sample *tensor.Tensor[float32, cb], u Approximator[cb], tree ParamTree[cb]) (*tensor.Tensor[float32, cb], error) {
		return sample.Square(), nil
	})

	loss, err := NewPDEStatioLoss(PDEStatioConfig[cb]{
		Approximator: constantModel{c: 1, kind: Pointwise},
		Sobolev:      reg,
		Weights:      map[string]TermWeight{TermSobolev: Scalar(2)},
	})
	require.NoError(t, err)

	interior, err := tensor.FromSlice([]float32{1, 3}, tensor.Shape{2, 1}, b)
	require.NoError(t, err)
	_, breakdown, err := loss.Evaluate(ParamTree[cb]{}, data.PDEStatioBatch[cb]{Interior: interior})
	require.NoError(t, err)

	// mean(1, 9) = 5, weighted by 2.
	assert.InDelta(t, 10.0, float64(item(breakdown[TermSobolev])), 1e-6)
}

func TestGridNativeTermsFailFast(t *testing.T) {
	b := newCPU()
	zero := func(x *tensor.Tensor[float32, cb]) (*tensor.Tensor[float32, cb], error) {
		return tensor.Zeros[float32](tensor.Shape{1, 1}, b), nil
	}
	loss, err := NewPDEStatioLoss(PDEStatioConfig[cb]{
		Approximator: constantModel{c: 1, kind: GridNative},
		Boundary: &BoundaryConditions[cb]{
			All: &BoundaryCondition[cb]{Kind: Dirichlet, Value: zero},
		},
	})
	require.NoError(t, err)

	interior, err := tensor.FromSlice([]float32{0.5}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)
	_, _, err = loss.Evaluate(ParamTree[cb]{}, data.PDEStatioBatch[cb]{
		Interior: interior,
		Border:   border1D(t, b, 1, 0, 1),
	})
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestNonStatioInitialCondition(t *testing.T) {
	b := newCPU()

	// u ≡ 2, prescribed initial value 1 at every point: MSE 1.
	loss, err := NewPDENonStatioLoss(PDENonStatioConfig[cb]{
		Approximator: constantModel{c: 2, kind: Pointwise},
		Initial: &SpatialInitialCondition[cb]{
			T0: 0,
			Value: func(x *tensor.Tensor[float32, cb]) (*tensor.Tensor[float32, cb], error) {
				return tensor.Full(tensor.Shape{1, 1}, float32(1), b), nil
			},
		},
	})
	require.NoError(t, err)

	times, err := tensor.FromSlice([]float32{0.1, 0.2}, tensor.Shape{2, 1}, b)
	require.NoError(t, err)
	interior, err := tensor.FromSlice([]float32{0.3, 0.7}, tensor.Shape{2, 1}, b)
	require.NoError(t, err)

	total, breakdown, err := loss.Evaluate(ParamTree[cb]{}, data.PDENonStatioBatch[cb]{
		Temporal: times,
		Interior: interior,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, float64(item(breakdown[TermInitial])), 1e-6)
	assert.InDelta(t, 1.0, float64(item(total)), 1e-6)
}

func TestNonStatioMissingInitialValueRejected(t *testing.T) {
	_, err := NewPDENonStatioLoss(PDENonStatioConfig[cb]{
		Approximator: constantModel{c: 1, kind: Pointwise},
		Initial:      &SpatialInitialCondition[cb]{T0: 0},
	})
	assert.ErrorIs(t, err, ErrBadInitialCondition)
}
