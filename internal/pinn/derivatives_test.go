package pinn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopinn/gopinn/internal/autodiff"
	"github.com/gopinn/gopinn/internal/backend/cpu"
	"github.com/gopinn/gopinn/internal/data"
	"github.com/gopinn/gopinn/internal/tensor"
)

func TestSelectDerivativesKeepsWhitelistedHeaders(t *testing.T) {
	b := newCPU()
	tree := linearTree(t, b, 2)
	tree.Eq = map[string]*tensor.Tensor[float32, *cpu.CPUBackend]{"alpha": scalarLeaf(t, b, 1)}

	keys := DerivativeKeys{TermDynamic: {GroupEqParams}}
	selected := SelectDerivatives(tree, TermDynamic, keys)

	// eq_params keeps identity, nn_params gets a fresh header over the
	// same storage.
	assert.Same(t, tree.Eq["alpha"].Raw(), selected.Eq["alpha"].Raw())
	assert.NotSame(t, tree.NN["w"].Raw(), selected.NN["w"].Raw())
	assert.Equal(t, tree.NN["w"].Data(), selected.NN["w"].Data())
}

func TestSelectDerivativesDefaultsToNNParams(t *testing.T) {
	b := newCPU()
	tree := linearTree(t, b, 2)
	tree.Eq = map[string]*tensor.Tensor[float32, *cpu.CPUBackend]{"alpha": scalarLeaf(t, b, 1)}

	selected := SelectDerivatives(tree, "some_term", DerivativeKeys{})

	assert.Same(t, tree.NN["w"].Raw(), selected.NN["w"].Raw())
	assert.NotSame(t, tree.Eq["alpha"].Raw(), selected.Eq["alpha"].Raw())
}

func TestSelectDerivativesNonInterfering(t *testing.T) {
	b := newCPU()
	tree := linearTree(t, b, 2)
	tree.Eq = map[string]*tensor.Tensor[float32, *cpu.CPUBackend]{"alpha": scalarLeaf(t, b, 1)}

	keys := DerivativeKeys{
		"a": {GroupNNParams},
		"b": {GroupEqParams},
	}

	// Selections for different terms must not disturb the source tree
	// or each other, in either order.
	selA := SelectDerivatives(tree, "a", keys)
	selB := SelectDerivatives(tree, "b", keys)
	selBThenA := SelectDerivatives(SelectDerivatives(tree, "b", keys), "a", keys)

	assert.Same(t, tree.NN["w"].Raw(), selA.NN["w"].Raw())
	assert.Same(t, tree.Eq["alpha"].Raw(), selB.Eq["alpha"].Raw())

	// Applying "a" after "b" keeps nn_params differentiable and leaves
	// eq_params detached, the same partition as selA alone.
	assert.NotSame(t, tree.Eq["alpha"].Raw(), selBThenA.Eq["alpha"].Raw())
	assert.Equal(t, tree.Eq["alpha"].Data(), selBThenA.Eq["alpha"].Data())
}

func TestDerivativeSelectionRoutesGradients(t *testing.T) {
	type ab = *autodiff.AutodiffBackend[*cpu.CPUBackend]
	b := autodiff.New(cpu.New())
	b.Tape().StartRecording()

	w, err := tensor.FromSlice([]float32{2}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)
	alpha, err := tensor.FromSlice([]float32{3}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)
	tree := ParamTree[ab]{
		NN: NNParams[ab]{"w": w},
		Eq: map[string]*tensor.Tensor[float32, ab]{"alpha": alpha},
	}

	// Residual alpha·u(t): both parameter groups enter the value, but
	// only eq_params is whitelisted for the dynamics term.
	op := DynamicFunc[ab](func(inputs []*tensor.Tensor[float32, ab], u Approximator[ab], tr ParamTree[ab]) (*tensor.Tensor[float32, ab], error) {
		pred, err := u.Eval(inputs, tr)
		if err != nil {
			return nil, err
		}
		return pred.Mul(tr.Eq["alpha"]), nil
	})
	loss, err := NewEquationLoss(EquationConfig[ab]{
		Approximator:   linearModel[ab]{},
		Dynamic:        op,
		DerivativeKeys: DerivativeKeys{TermDynamic: {GroupEqParams}},
	})
	require.NoError(t, err)

	times, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2, 1}, b)
	require.NoError(t, err)
	total, _, err := loss.Evaluate(tree, data.ODEBatch[ab]{Temporal: times})
	require.NoError(t, err)

	grads, err := autodiff.Backward(total, b)
	require.NoError(t, err)

	_, hasAlpha := grads[alpha.Raw()]
	_, hasW := grads[w.Raw()]
	assert.True(t, hasAlpha)
	assert.False(t, hasW)
}

func TestGradientsReachNetworkWeightsByDefault(t *testing.T) {
	type ab = *autodiff.AutodiffBackend[*cpu.CPUBackend]
	b := autodiff.New(cpu.New())
	b.Tape().StartRecording()

	w, err := tensor.FromSlice([]float32{2}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)
	tree := ParamTree[ab]{NN: NNParams[ab]{"w": w}}

	loss, err := NewEquationLoss(EquationConfig[ab]{
		Approximator: linearModel[ab]{},
		Dynamic:      identityResidual[ab](),
	})
	require.NoError(t, err)

	times, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2, 1}, b)
	require.NoError(t, err)
	total, _, err := loss.Evaluate(tree, data.ODEBatch[ab]{Temporal: times})
	require.NoError(t, err)

	grads, err := autodiff.Backward(total, b)
	require.NoError(t, err)

	// d/dw mean((wt - t)²) over {1, 2} at w=2 is 2·mean(t²) = 5.
	g, ok := grads[w.Raw()]
	require.True(t, ok)
	assert.InDelta(t, 5.0, float64(g.AsFloat32()[0]), 1e-5)
}
