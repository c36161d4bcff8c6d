package pinn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopinn/gopinn/internal/backend/cpu"
	"github.com/gopinn/gopinn/internal/data"
	"github.com/gopinn/gopinn/internal/tensor"
)

func TestDynamicsOnlyEvaluation(t *testing.T) {
	b := newCPU()
	loss, err := NewEquationLoss(EquationConfig[*cpu.CPUBackend]{
		Approximator: linearModel[*cpu.CPUBackend]{},
		Dynamic:      identityResidual[*cpu.CPUBackend](),
	})
	require.NoError(t, err)

	// u(t) = 2t, residual u(t) - t = t; over {1, 2} the MSE is
	// (1 + 4) / 2.
	tree := linearTree(t, b, 2)
	batch := data.ODEBatch[*cpu.CPUBackend]{Temporal: timeBatch(t, b, 1, 2)}

	total, breakdown, err := loss.Evaluate(tree, batch)
	require.NoError(t, err)

	assert.InDelta(t, 2.5, float64(item(total)), 1e-6)
	assert.InDelta(t, 2.5, float64(item(breakdown[TermDynamic])), 1e-6)
	assert.Equal(t, float32(0), item(breakdown[TermInitial]))
	assert.Equal(t, float32(0), item(breakdown[TermObservations]))
}

func TestAbsentDataForcesZeroWeights(t *testing.T) {
	loss, err := NewEquationLoss(EquationConfig[*cpu.CPUBackend]{
		Approximator: linearModel[*cpu.CPUBackend]{},
		Dynamic:      identityResidual[*cpu.CPUBackend](),
		Weights: map[string]TermWeight{
			TermInitial:      Scalar(7),
			TermObservations: Scalar(3),
		},
	})
	require.NoError(t, err)

	// No initial condition or observations were supplied, so even the
	// explicit nonzero weights must come out as 0.
	assert.True(t, loss.Weights()[TermInitial].IsZero())
	assert.True(t, loss.Weights()[TermObservations].IsZero())
	assert.False(t, loss.Weights()[TermDynamic].IsZero())
}

func TestTotalEqualsBreakdownSum(t *testing.T) {
	b := newCPU()
	u0 := scalarLeaf(t, b, 3)
	obsInputs := timeBatch(t, b, 1, 2)
	obsValues, err := tensor.FromSlice([]float32{2.5, 4.5}, tensor.Shape{2, 1}, b)
	require.NoError(t, err)

	loss, err := NewEquationLoss(EquationConfig[*cpu.CPUBackend]{
		Approximator: linearModel[*cpu.CPUBackend]{},
		Dynamic:      identityResidual[*cpu.CPUBackend](),
		Initial:      &InitialCondition[*cpu.CPUBackend]{T0: 1, U0: u0},
		Observations: &data.ObservedBatch[*cpu.CPUBackend]{Inputs: obsInputs, Values: obsValues},
	})
	require.NoError(t, err)

	tree := linearTree(t, b, 2)
	batch := data.ODEBatch[*cpu.CPUBackend]{Temporal: timeBatch(t, b, 1, 2)}

	total, breakdown, err := loss.Evaluate(tree, batch)
	require.NoError(t, err)

	var sum float32
	for _, v := range breakdown {
		sum += item(v)
	}
	assert.InDelta(t, float64(sum), float64(item(total)), 1e-5)

	// u(1) = 2 against u0 = 3.
	assert.InDelta(t, 1.0, float64(item(breakdown[TermInitial])), 1e-6)
	// Observed 2.5 and 4.5 against predictions 2 and 4.
	assert.InDelta(t, 0.25, float64(item(breakdown[TermObservations])), 1e-6)
}

func TestInitialConditionShapeMismatch(t *testing.T) {
	b := newCPU()
	u0, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{1, 3}, b)
	require.NoError(t, err)

	loss, err := NewEquationLoss(EquationConfig[*cpu.CPUBackend]{
		Approximator: linearModel[*cpu.CPUBackend]{},
		Initial:      &InitialCondition[*cpu.CPUBackend]{T0: 0, U0: u0},
	})
	require.NoError(t, err)

	tree := linearTree(t, b, 2)
	batch := data.ODEBatch[*cpu.CPUBackend]{Temporal: timeBatch(t, b, 1)}

	_, _, err = loss.Evaluate(tree, batch)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestMissingInitialValueRejected(t *testing.T) {
	_, err := NewEquationLoss(EquationConfig[*cpu.CPUBackend]{
		Approximator: linearModel[*cpu.CPUBackend]{},
		Initial:      &InitialCondition[*cpu.CPUBackend]{T0: 0},
	})
	assert.ErrorIs(t, err, ErrBadInitialCondition)
}

func TestObservationShapeMismatch(t *testing.T) {
	b := newCPU()
	values, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3, 1}, b)
	require.NoError(t, err)

	loss, err := NewEquationLoss(EquationConfig[*cpu.CPUBackend]{
		Approximator: linearModel[*cpu.CPUBackend]{},
		Observations: &data.ObservedBatch[*cpu.CPUBackend]{
			Inputs: timeBatch(t, b, 1, 2),
			Values: values,
		},
	})
	require.NoError(t, err)

	tree := linearTree(t, b, 2)
	batch := data.ODEBatch[*cpu.CPUBackend]{Temporal: timeBatch(t, b, 1)}

	_, _, err = loss.Evaluate(tree, batch)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestParamBatchZipsWithTemporalAxis(t *testing.T) {
	b := newCPU()

	// Residual is the batched eq-param itself: the stacked output must
	// reproduce the per-sample values, proving rows are zipped rather
	// than broadcast.
	op := DynamicFunc[*cpu.CPUBackend](func(inputs []*tensor.Tensor[float32, *cpu.CPUBackend], u Approximator[*cpu.CPUBackend], tree ParamTree[*cpu.CPUBackend]) (*tensor.Tensor[float32, *cpu.CPUBackend], error) {
		return tree.Eq["alpha"], nil
	})

	loss, err := NewEquationLoss(EquationConfig[*cpu.CPUBackend]{
		Approximator: linearModel[*cpu.CPUBackend]{},
		Dynamic:      op,
	})
	require.NoError(t, err)

	tree := linearTree(t, b, 1)
	tree.Eq = map[string]*tensor.Tensor[float32, *cpu.CPUBackend]{"alpha": scalarLeaf(t, b, 0)}

	alphas, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3, 1}, b)
	require.NoError(t, err)
	batch := data.ODEBatch[*cpu.CPUBackend]{
		Temporal: timeBatch(t, b, 0, 0, 0),
		Params:   map[string]*tensor.Tensor[float32, *cpu.CPUBackend]{"alpha": alphas},
	}

	total, _, err := loss.Evaluate(tree, batch)
	require.NoError(t, err)

	// MSE of residuals {1, 2, 3} is (1 + 4 + 9) / 3.
	assert.InDelta(t, 14.0/3.0, float64(item(total)), 1e-5)
}

func TestParamBatchLengthMismatch(t *testing.T) {
	b := newCPU()
	loss, err := NewEquationLoss(EquationConfig[*cpu.CPUBackend]{
		Approximator: linearModel[*cpu.CPUBackend]{},
		Dynamic:      identityResidual[*cpu.CPUBackend](),
	})
	require.NoError(t, err)

	tree := linearTree(t, b, 1)
	tree.Eq = map[string]*tensor.Tensor[float32, *cpu.CPUBackend]{"alpha": scalarLeaf(t, b, 0)}

	alphas, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2, 1}, b)
	require.NoError(t, err)
	batch := data.ODEBatch[*cpu.CPUBackend]{
		Temporal: timeBatch(t, b, 0, 0, 0),
		Params:   map[string]*tensor.Tensor[float32, *cpu.CPUBackend]{"alpha": alphas},
	}

	_, _, err = loss.Evaluate(tree, batch)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestParamBatchUnknownKeyRejected(t *testing.T) {
	b := newCPU()
	loss, err := NewEquationLoss(EquationConfig[*cpu.CPUBackend]{
		Approximator: linearModel[*cpu.CPUBackend]{},
		Dynamic:      identityResidual[*cpu.CPUBackend](),
	})
	require.NoError(t, err)

	tree := linearTree(t, b, 1)
	batch := data.ODEBatch[*cpu.CPUBackend]{
		Temporal: timeBatch(t, b, 0),
		Params:   map[string]*tensor.Tensor[float32, *cpu.CPUBackend]{"ghost": scalarLeaf(t, b, 1)},
	}

	_, _, err = loss.Evaluate(tree, batch)
	assert.ErrorIs(t, err, ErrKeyMismatch)
}
