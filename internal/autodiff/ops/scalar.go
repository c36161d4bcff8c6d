package ops

import "github.com/gopinn/gopinn/internal/tensor"

// ScalarOp represents an element-wise operation with a constant scalar:
// add, sub, mul or div. The scalar is a constant, so only the tensor
// input receives a gradient.
type ScalarOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	// gradScale is d(output)/d(input): 1 for add/sub, k for mul, 1/k for div.
	gradScale float64
}

// NewAddScalarOp creates the op for output = x + k.
func NewAddScalarOp(x, output *tensor.RawTensor) *ScalarOp {
	return &ScalarOp{input: x, output: output, gradScale: 1}
}

// NewSubScalarOp creates the op for output = x - k.
func NewSubScalarOp(x, output *tensor.RawTensor) *ScalarOp {
	return &ScalarOp{input: x, output: output, gradScale: 1}
}

// NewMulScalarOp creates the op for output = x * k.
func NewMulScalarOp(x, output *tensor.RawTensor, k float64) *ScalarOp {
	return &ScalarOp{input: x, output: output, gradScale: k}
}

// NewDivScalarOp creates the op for output = x / k.
func NewDivScalarOp(x, output *tensor.RawTensor, k float64) *ScalarOp {
	return &ScalarOp{input: x, output: output, gradScale: 1 / k}
}

// Backward computes grad_input = outputGrad * gradScale.
func (op *ScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	if op.gradScale == 1 {
		return []*tensor.RawTensor{outputGrad}
	}
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.gradScale)}
}

// Inputs returns the input tensor [x].
func (op *ScalarOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the output tensor.
func (op *ScalarOp) Output() *tensor.RawTensor { return op.output }
