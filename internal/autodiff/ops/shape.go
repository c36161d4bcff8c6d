package ops

import "github.com/gopinn/gopinn/internal/tensor"

// ReshapeOp represents a reshape (also used for squeeze/unsqueeze).
// Without recording it, gradients would stop at the reshaped tensor and
// never reach the original parameter.
type ReshapeOp struct{ unaryOp }

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(x, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{unaryOp{input: x, output: output}}
}

// Backward reshapes the gradient back to the input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.input.Shape())}
}

// TransposeOp represents a dimension permutation.
type TransposeOp struct {
	unaryOp
	axes []int
}

// NewTransposeOp creates a new TransposeOp. axes must be the full,
// normalized permutation used in the forward pass.
func NewTransposeOp(x, output *tensor.RawTensor, axes []int) *TransposeOp {
	return &TransposeOp{unaryOp: unaryOp{input: x, output: output}, axes: axes}
}

// Backward applies the inverse permutation to the gradient.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inverse := make([]int, len(op.axes))
	for i, a := range op.axes {
		inverse[a] = i
	}
	return []*tensor.RawTensor{backend.Transpose(outputGrad, inverse...)}
}

// ExpandOp represents an explicit broadcast to a larger shape.
type ExpandOp struct{ unaryOp }

// NewExpandOp creates a new ExpandOp.
func NewExpandOp(x, output *tensor.RawTensor) *ExpandOp {
	return &ExpandOp{unaryOp{input: x, output: output}}
}

// Backward sums the gradient over the broadcast dimensions.
func (op *ExpandOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{reduceBroadcast(outputGrad, op.input.Shape(), backend)}
}

// NarrowOp represents a contiguous slice along one dimension.
//
// Backward scatters the gradient into a zero tensor of the input shape at
// the sliced position; elements outside the slice receive no gradient.
type NarrowOp struct {
	unaryOp
	dim, start, length int
}

// NewNarrowOp creates a new NarrowOp. dim must already be normalized.
func NewNarrowOp(x, output *tensor.RawTensor, dim, start, length int) *NarrowOp {
	return &NarrowOp{unaryOp: unaryOp{input: x, output: output}, dim: dim, start: start, length: length}
}

// Backward zero-pads the gradient back to the input shape.
func (op *NarrowOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	shape := op.input.Shape()
	grad, err := tensor.NewRaw(shape, op.input.DType(), backend.Device())
	if err != nil {
		panic(err)
	}

	outer, inner := 1, 1
	for i := 0; i < op.dim; i++ {
		outer *= shape[i]
	}
	for i := op.dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}

	switch op.input.DType() {
	case tensor.Float32:
		src, dst := outputGrad.AsFloat32(), grad.AsFloat32()
		for o := 0; o < outer; o++ {
			copy(dst[(o*shape[op.dim]+op.start)*inner:(o*shape[op.dim]+op.start+op.length)*inner],
				src[o*op.length*inner:(o+1)*op.length*inner])
		}
	case tensor.Float64:
		src, dst := outputGrad.AsFloat64(), grad.AsFloat64()
		for o := 0; o < outer; o++ {
			copy(dst[(o*shape[op.dim]+op.start)*inner:(o*shape[op.dim]+op.start+op.length)*inner],
				src[o*op.length*inner:(o+1)*op.length*inner])
		}
	}

	return []*tensor.RawTensor{grad}
}

// CatOp represents concatenation along one dimension.
type CatOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	dim    int
}

// NewCatOp creates a new CatOp. dim must already be normalized.
func NewCatOp(inputs []*tensor.RawTensor, output *tensor.RawTensor, dim int) *CatOp {
	return &CatOp{inputs: inputs, output: output, dim: dim}
}

// Backward splits the gradient back into per-input slices.
func (op *CatOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grads := make([]*tensor.RawTensor, len(op.inputs))
	offset := 0
	for i, in := range op.inputs {
		size := in.Shape()[op.dim]
		grads[i] = backend.Narrow(outputGrad, op.dim, offset, size)
		offset += size
	}
	return grads
}

// Inputs returns the concatenated input tensors.
func (op *CatOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the concatenated output tensor.
func (op *CatOp) Output() *tensor.RawTensor { return op.output }
