package ops

import "github.com/gopinn/gopinn/internal/tensor"

// SumOp represents a full reduction: output = sum(x) with shape {1}.
//
// Backward: every element contributed with weight 1, so the scalar
// gradient is broadcast back to the input shape.
type SumOp struct{ unaryOp }

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.RawTensor) *SumOp {
	return &SumOp{unaryOp{input: x, output: output}}
}

// Backward broadcasts the scalar gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Expand(outputGrad, op.input.Shape())}
}

// SumDimOp represents a reduction sum along one dimension.
type SumDimOp struct {
	unaryOp
	dim     int
	keepDim bool
}

// NewSumDimOp creates a new SumDimOp. dim must already be normalized
// (non-negative).
func NewSumDimOp(x, output *tensor.RawTensor, dim int, keepDim bool) *SumDimOp {
	return &SumDimOp{unaryOp: unaryOp{input: x, output: output}, dim: dim, keepDim: keepDim}
}

// Backward broadcasts the gradient along the reduced dimension.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := outputGrad
	if !op.keepDim {
		grad = backend.Unsqueeze(grad, op.dim)
	}
	return []*tensor.RawTensor{backend.Expand(grad, op.input.Shape())}
}

// MeanDimOp represents a mean reduction along one dimension.
type MeanDimOp struct {
	unaryOp
	dim     int
	keepDim bool
}

// NewMeanDimOp creates a new MeanDimOp. dim must already be normalized.
func NewMeanDimOp(x, output *tensor.RawTensor, dim int, keepDim bool) *MeanDimOp {
	return &MeanDimOp{unaryOp: unaryOp{input: x, output: output}, dim: dim, keepDim: keepDim}
}

// Backward broadcasts the gradient along the reduced dimension, scaled
// by 1/size of that dimension.
func (op *MeanDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := outputGrad
	if !op.keepDim {
		grad = backend.Unsqueeze(grad, op.dim)
	}
	expanded := backend.Expand(grad, op.input.Shape())
	return []*tensor.RawTensor{backend.DivScalar(expanded, float64(op.input.Shape()[op.dim]))}
}
