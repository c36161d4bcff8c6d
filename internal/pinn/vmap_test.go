package pinn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopinn/gopinn/internal/backend/cpu"
	"github.com/gopinn/gopinn/internal/tensor"
)

func TestApplyPointwiseStacksRows(t *testing.T) {
	b := newCPU()
	in, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3, 1}, b)
	require.NoError(t, err)

	out, err := Apply(func(rows []*tensor.Tensor[float32, *cpu.CPUBackend], tree ParamTree[*cpu.CPUBackend]) (*tensor.Tensor[float32, *cpu.CPUBackend], error) {
		return rows[0].MulScalar(10), nil
	}, []*tensor.Tensor[float32, *cpu.CPUBackend]{in}, ParamTree[*cpu.CPUBackend]{}, AxisSpec{Inputs: []int{0}}, Pointwise)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{3, 1}, out.Shape())
	assert.Equal(t, []float32{10, 20, 30}, out.Data())
}

func TestApplyBroadcastInput(t *testing.T) {
	b := newCPU()
	mapped, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2, 1}, b)
	require.NoError(t, err)
	shared := scalarLeaf(t, b, 100)

	out, err := Apply(func(rows []*tensor.Tensor[float32, *cpu.CPUBackend], tree ParamTree[*cpu.CPUBackend]) (*tensor.Tensor[float32, *cpu.CPUBackend], error) {
		return rows[0].Add(rows[1]), nil
	}, []*tensor.Tensor[float32, *cpu.CPUBackend]{mapped, shared}, ParamTree[*cpu.CPUBackend]{}, AxisSpec{Inputs: []int{0, NoMap}}, Pointwise)
	require.NoError(t, err)

	assert.Equal(t, []float32{101, 102}, out.Data())
}

func TestApplyGridNativeCallsOnce(t *testing.T) {
	b := newCPU()
	in, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3, 1}, b)
	require.NoError(t, err)

	calls := 0
	out, err := Apply(func(rows []*tensor.Tensor[float32, *cpu.CPUBackend], tree ParamTree[*cpu.CPUBackend]) (*tensor.Tensor[float32, *cpu.CPUBackend], error) {
		calls++
		return rows[0], nil
	}, []*tensor.Tensor[float32, *cpu.CPUBackend]{in}, ParamTree[*cpu.CPUBackend]{}, AxisSpec{Inputs: []int{0}}, GridNative)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, []float32{1, 2, 3}, out.Data())
}

func TestApplySlicesMappedEqParams(t *testing.T) {
	b := newCPU()
	in, err := tensor.FromSlice([]float32{0, 0, 0}, tensor.Shape{3, 1}, b)
	require.NoError(t, err)
	alphas, err := tensor.FromSlice([]float32{5, 6, 7}, tensor.Shape{3, 1}, b)
	require.NoError(t, err)
	tree := ParamTree[*cpu.CPUBackend]{
		Eq: map[string]*tensor.Tensor[float32, *cpu.CPUBackend]{"alpha": alphas},
	}

	out, err := Apply(func(rows []*tensor.Tensor[float32, *cpu.CPUBackend], tr ParamTree[*cpu.CPUBackend]) (*tensor.Tensor[float32, *cpu.CPUBackend], error) {
		return tr.Eq["alpha"], nil
	}, []*tensor.Tensor[float32, *cpu.CPUBackend]{in}, tree, AxisSpec{
		Inputs:   []int{0},
		EqParams: map[string]int{"alpha": 0},
	}, Pointwise)
	require.NoError(t, err)

	// Sample i sees row i of the parameter batch.
	assert.Equal(t, []float32{5, 6, 7}, out.Data())
}

func TestApplyMappedEqParamMissing(t *testing.T) {
	b := newCPU()
	in, err := tensor.FromSlice([]float32{0}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)

	_, err = Apply(func(rows []*tensor.Tensor[float32, *cpu.CPUBackend], tr ParamTree[*cpu.CPUBackend]) (*tensor.Tensor[float32, *cpu.CPUBackend], error) {
		return rows[0], nil
	}, []*tensor.Tensor[float32, *cpu.CPUBackend]{in}, ParamTree[*cpu.CPUBackend]{}, AxisSpec{
		Inputs:   []int{0},
		EqParams: map[string]int{"alpha": 0},
	}, Pointwise)
	assert.ErrorIs(t, err, ErrKeyMismatch)
}

func TestApplyAxisCountMismatch(t *testing.T) {
	b := newCPU()
	in, err := tensor.FromSlice([]float32{0}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)

	_, err = Apply(func(rows []*tensor.Tensor[float32, *cpu.CPUBackend], tr ParamTree[*cpu.CPUBackend]) (*tensor.Tensor[float32, *cpu.CPUBackend], error) {
		return rows[0], nil
	}, []*tensor.Tensor[float32, *cpu.CPUBackend]{in}, ParamTree[*cpu.CPUBackend]{}, AxisSpec{Inputs: []int{0, 0}}, Pointwise)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
