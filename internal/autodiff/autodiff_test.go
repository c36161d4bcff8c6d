package autodiff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopinn/gopinn/internal/backend/cpu"
	"github.com/gopinn/gopinn/internal/tensor"
)

func newBackend() *AutodiffBackend[*cpu.CPUBackend] {
	return New(cpu.New())
}

func gradOf[T tensor.DType, B tensor.Backend](t *testing.T, grads map[*tensor.RawTensor]*tensor.RawTensor, x *tensor.Tensor[T, B]) *tensor.RawTensor {
	t.Helper()
	g, ok := grads[x.Raw()]
	require.True(t, ok, "expected a gradient for tensor %v", x.Shape())
	return g
}

func TestBackwardSquare(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x, err := tensor.FromSlice([]float32{2, 3}, tensor.Shape{2}, b)
	require.NoError(t, err)

	loss := x.Mul(x).Sum()
	grads, err := Backward(loss, b)
	require.NoError(t, err)

	// d/dx sum(x²) = 2x
	g := gradOf(t, grads, x)
	assert.InDeltaSlice(t, []float32{4, 6}, g.AsFloat32(), 1e-6)
}

func TestBackwardChainRule(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x, err := tensor.FromSlice([]float32{0.5, 1.0}, tensor.Shape{2}, b)
	require.NoError(t, err)

	// y = sin(x²), dy/dx = cos(x²)·2x
	loss := x.Mul(x).Sin().Sum()
	grads, err := Backward(loss, b)
	require.NoError(t, err)

	g := gradOf(t, grads, x).AsFloat32()
	xs := []float64{0.5, 1.0}
	for i, xi := range xs {
		want := math.Cos(xi*xi) * 2 * xi
		assert.InDelta(t, want, float64(g[i]), 1e-5)
	}
}

func TestBackwardMatMul(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	a, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, b)
	require.NoError(t, err)
	w, err := tensor.FromSlice([]float32{5, 6, 7, 8}, tensor.Shape{2, 2}, b)
	require.NoError(t, err)

	loss := a.MatMul(w).Sum()
	grads, err := Backward(loss, b)
	require.NoError(t, err)

	// dL/dA = ones @ Wᵀ, dL/dW = Aᵀ @ ones
	ga := gradOf(t, grads, a)
	gw := gradOf(t, grads, w)
	assert.InDeltaSlice(t, []float32{11, 15, 11, 15}, ga.AsFloat32(), 1e-6)
	assert.InDeltaSlice(t, []float32{4, 4, 6, 6}, gw.AsFloat32(), 1e-6)
}

func TestBackwardBroadcastBias(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2}, b)
	require.NoError(t, err)
	bias, err := tensor.FromSlice([]float32{10, 20}, tensor.Shape{1, 2}, b)
	require.NoError(t, err)

	loss := x.Add(bias).Sum()
	grads, err := Backward(loss, b)
	require.NoError(t, err)

	// Bias grad sums over the broadcast batch dimension.
	gb := gradOf(t, grads, bias)
	assert.Equal(t, tensor.Shape{1, 2}, gb.Shape())
	assert.InDeltaSlice(t, []float32{3, 3}, gb.AsFloat32(), 1e-6)
}

func TestBackwardScalarOps(t *testing.T) {
	tests := []struct {
		name string
		fn   func(x *tensor.Tensor[float32, *AutodiffBackend[*cpu.CPUBackend]]) *tensor.Tensor[float32, *AutodiffBackend[*cpu.CPUBackend]]
		want float32
	}{
		{"add", func(x *tensor.Tensor[float32, *AutodiffBackend[*cpu.CPUBackend]]) *tensor.Tensor[float32, *AutodiffBackend[*cpu.CPUBackend]] {
			return x.AddScalar(5)
		}, 1},
		{"mul", func(x *tensor.Tensor[float32, *AutodiffBackend[*cpu.CPUBackend]]) *tensor.Tensor[float32, *AutodiffBackend[*cpu.CPUBackend]] {
			return x.MulScalar(3)
		}, 3},
		{"div", func(x *tensor.Tensor[float32, *AutodiffBackend[*cpu.CPUBackend]]) *tensor.Tensor[float32, *AutodiffBackend[*cpu.CPUBackend]] {
			return x.DivScalar(4)
		}, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend()
			b.Tape().StartRecording()

			x, err := tensor.FromSlice([]float32{2}, tensor.Shape{1}, b)
			require.NoError(t, err)

			loss := tt.fn(x).Sum()
			grads, err := Backward(loss, b)
			require.NoError(t, err)

			g := gradOf(t, grads, x)
			assert.InDelta(t, float64(tt.want), float64(g.AsFloat32()[0]), 1e-6)
		})
	}
}

func TestBackwardNarrow(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2}, b)
	require.NoError(t, err)

	// Only the middle row contributes to the loss.
	row := x.Narrow(0, 1, 1)
	loss := row.Mul(row).Sum()
	grads, err := Backward(loss, b)
	require.NoError(t, err)

	g := gradOf(t, grads, x)
	assert.Equal(t, tensor.Shape{3, 2}, g.Shape())
	assert.InDeltaSlice(t, []float32{0, 0, 6, 8, 0, 0}, g.AsFloat32(), 1e-6)
}

func TestBackwardCat(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	a, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, b)
	require.NoError(t, err)
	c, err := tensor.FromSlice([]float32{3, 4, 5}, tensor.Shape{3}, b)
	require.NoError(t, err)

	joined := tensor.Cat([]*tensor.Tensor[float32, *AutodiffBackend[*cpu.CPUBackend]]{a, c}, 0)
	loss := joined.MulScalar(2).Sum()
	grads, err := Backward(loss, b)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float32{2, 2}, gradOf(t, grads, a).AsFloat32(), 1e-6)
	assert.InDeltaSlice(t, []float32{2, 2, 2}, gradOf(t, grads, c).AsFloat32(), 1e-6)
}

func TestBackwardMeanDim(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, b)
	require.NoError(t, err)

	loss := x.MeanDim(0, false).Sum()
	grads, err := Backward(loss, b)
	require.NoError(t, err)

	g := gradOf(t, grads, x)
	assert.InDeltaSlice(t, []float32{0.5, 0.5, 0.5, 0.5}, g.AsFloat32(), 1e-6)
}

func TestDetachBlocksGradient(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x, err := tensor.FromSlice([]float32{2, 3}, tensor.Shape{2}, b)
	require.NoError(t, err)

	// A detached view shares data but is a fresh graph node, so the
	// original header never appears in the gradient map.
	frozen := x.Detach()
	loss := frozen.Mul(frozen).Sum()
	grads, err := Backward(loss, b)
	require.NoError(t, err)

	_, hasOriginal := grads[x.Raw()]
	assert.False(t, hasOriginal)
	_, hasDetached := grads[frozen.Raw()]
	assert.True(t, hasDetached)
}

func TestBackwardRequiresRecordedOps(t *testing.T) {
	b := newBackend()

	x, err := tensor.FromSlice([]float32{1}, tensor.Shape{1}, b)
	require.NoError(t, err)

	_, err = Backward(x, b)
	assert.Error(t, err)
}

func TestTapeClear(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, b)
	require.NoError(t, err)
	_ = x.Mul(x)
	require.Greater(t, b.Tape().NumOps(), 0)

	b.Tape().Clear()
	assert.Equal(t, 0, b.Tape().NumOps())
	assert.True(t, b.Tape().IsRecording())
}

func TestRecordingToggle(t *testing.T) {
	b := newBackend()

	x, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, b)
	require.NoError(t, err)

	_ = x.Mul(x)
	assert.Equal(t, 0, b.Tape().NumOps())

	b.Tape().StartRecording()
	_ = x.Mul(x)
	assert.Equal(t, 1, b.Tape().NumOps())
}
