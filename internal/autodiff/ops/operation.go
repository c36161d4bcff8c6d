// Package ops defines operation interfaces and implementations for automatic differentiation.
//
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass. The op set covers
// what residual evaluation drives: element-wise arithmetic, scalar
// variants, matrix multiplication, unary math functions, reductions and
// shape/slicing operations.
package ops

import "github.com/gopinn/gopinn/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)] (gradient flows equally to both inputs)
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}
