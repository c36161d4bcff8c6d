package pinn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gopinn/gopinn/internal/backend/cpu"
	"github.com/gopinn/gopinn/internal/tensor"
)

// linearModel is the test approximator u(t) = w·t with a single weight
// leaf "w" of shape (1, 1).
type linearModel[B tensor.Backend] struct {
	eqID  string
	slice OutputSlice
}

func (m linearModel[B]) Eval(inputs []*tensor.Tensor[float32, B], tree ParamTree[B]) (*tensor.Tensor[float32, B], error) {
	w, err := tree.NNFor(m.eqID)
	if err != nil {
		return nil, err
	}
	t := inputs[len(inputs)-1]
	return t.Reshape(1, t.NumElements()).MatMul(w["w"]), nil
}

func (m linearModel[B]) Kind() Kind         { return Pointwise }
func (m linearModel[B]) Slice() OutputSlice { return m.slice }

func newCPU() *cpu.CPUBackend { return cpu.New() }

type tensorLeaf = tensor.Tensor[float32, *cpu.CPUBackend]

func scalarLeaf(t *testing.T, b *cpu.CPUBackend, v float32) *tensor.Tensor[float32, *cpu.CPUBackend] {
	t.Helper()
	leaf, err := tensor.FromSlice([]float32{v}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)
	return leaf
}

func timeBatch(t *testing.T, b *cpu.CPUBackend, times ...float32) *tensor.Tensor[float32, *cpu.CPUBackend] {
	t.Helper()
	batch, err := tensor.FromSlice(times, tensor.Shape{len(times), 1}, b)
	require.NoError(t, err)
	return batch
}

func linearTree(t *testing.T, b *cpu.CPUBackend, w float32) ParamTree[*cpu.CPUBackend] {
	t.Helper()
	return ParamTree[*cpu.CPUBackend]{
		NN: NNParams[*cpu.CPUBackend]{"w": scalarLeaf(t, b, w)},
	}
}

// identityResidual is the operator residual u(t) - t, zero exactly when
// the approximator is the identity.
func identityResidual[B tensor.Backend]() DynamicFunc[B] {
	return func(inputs []*tensor.Tensor[float32, B], u Approximator[B], tree ParamTree[B]) (*tensor.Tensor[float32, B], error) {
		pred, err := u.Eval(inputs, tree)
		if err != nil {
			return nil, err
		}
		t := inputs[0]
		return pred.Sub(t.Reshape(1, t.NumElements())), nil
	}
}

func item[B tensor.Backend](x *tensor.Tensor[float32, B]) float32 {
	return x.Data()[0]
}
