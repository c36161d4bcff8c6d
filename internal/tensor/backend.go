package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// The operation set is exactly what residual evaluation and the reference
// approximator drive: element-wise arithmetic with broadcasting, scalar
// variants, matrix multiplication, the unary math functions appearing in
// differential operators, reductions for mean-squared errors, and the
// shape/slicing operations used by batched evaluation.
//
// Implementations:
//   - CPU: pure Go eager kernels (internal/backend/cpu)
//   - Autodiff decorator: wraps another Backend and records a tape
//     (internal/autodiff)
type Backend interface {
	// Element-wise binary operations (NumPy-style broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor

	// Scalar operations (element-wise with scalar)
	AddScalar(x *RawTensor, scalar float64) *RawTensor
	SubScalar(x *RawTensor, scalar float64) *RawTensor
	MulScalar(x *RawTensor, scalar float64) *RawTensor
	DivScalar(x *RawTensor, scalar float64) *RawTensor

	// Math operations (element-wise)
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor
	Sin(x *RawTensor) *RawTensor
	Cos(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor
	Abs(x *RawTensor) *RawTensor
	Pow(x *RawTensor, p float64) *RawTensor

	// Reduction operations
	Sum(x *RawTensor) *RawTensor                            // total sum (scalar result)
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor  // sum along dimension
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor // mean along dimension

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Expand(x *RawTensor, shape Shape) *RawTensor // broadcast to shape
	Unsqueeze(x *RawTensor, dim int) *RawTensor  // add dimension of size 1
	Squeeze(x *RawTensor, dim int) *RawTensor    // remove dimension of size 1
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Narrow selects a contiguous range along a dimension:
	// output = x[..., start:start+length, ...]. Batched evaluation uses it
	// for per-sample rows, output-channel slices and boundary facets.
	Narrow(x *RawTensor, dim, start, length int) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
