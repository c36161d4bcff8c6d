package cpu

import (
	"fmt"

	"github.com/gopinn/gopinn/internal/tensor"
)

// Reshape returns a tensor with the same data and a new shape.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			t.Shape(), t.NumElements(), newShape, newShape.NumElements()))
	}

	result, err := tensor.NewRaw(newShape, t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	copy(result.Data(), t.Data()[:t.ByteSize()])
	return result
}

// Transpose permutes the tensor's dimensions.
// If axes is empty, all dimensions are reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: expected %d axes, got %d", ndim, len(axes)))
	}

	outShape := make(tensor.Shape, ndim)
	for i, a := range axes {
		if a < 0 || a >= ndim {
			panic(fmt.Sprintf("transpose: axis %d out of range for shape %v", a, shape))
		}
		outShape[i] = shape[a]
	}

	result, err := tensor.NewRaw(outShape, t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	srcStrides := shape.ComputeStrides()
	dstStrides := outShape.ComputeStrides()
	n := t.NumElements()

	mapIndex := func(dstFlat int) int {
		srcFlat := 0
		temp := dstFlat
		for d := 0; d < ndim; d++ {
			coord := temp / dstStrides[d]
			temp %= dstStrides[d]
			srcFlat += coord * srcStrides[axes[d]]
		}
		return srcFlat
	}

	switch t.DType() {
	case tensor.Float32:
		src, dst := t.AsFloat32(), result.AsFloat32()
		for i := 0; i < n; i++ {
			dst[i] = src[mapIndex(i)]
		}
	case tensor.Float64:
		src, dst := t.AsFloat64(), result.AsFloat64()
		for i := 0; i < n; i++ {
			dst[i] = src[mapIndex(i)]
		}
	}

	return result
}

// Expand broadcasts the tensor to the given shape.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	if _, _, err := tensor.BroadcastShapes(x.Shape(), shape); err != nil {
		panic(fmt.Sprintf("expand: %v", err))
	}

	result, err := tensor.NewRaw(shape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("expand: %v", err))
	}

	n := shape.NumElements()
	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i := 0; i < n; i++ {
			dst[i] = src[broadcastIndex(i, x.Shape(), shape)]
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i := 0; i < n; i++ {
			dst[i] = src[broadcastIndex(i, x.Shape(), shape)]
		}
	}

	return result
}

// Unsqueeze inserts a dimension of size 1 at the given position.
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if dim < 0 {
		dim += ndim + 1
	}
	if dim < 0 || dim > ndim {
		panic(fmt.Sprintf("unsqueeze: dimension %d out of range for shape %v", dim, shape))
	}

	newShape := make(tensor.Shape, 0, ndim+1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, shape[dim:]...)
	return cpu.Reshape(x, newShape)
}

// Squeeze removes a dimension of size 1 at the given position.
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("squeeze: dimension %d out of range for shape %v", dim, shape))
	}
	if shape[dim] != 1 {
		panic(fmt.Sprintf("squeeze: dimension %d has size %d, expected 1", dim, shape[dim]))
	}

	newShape := make(tensor.Shape, 0, ndim-1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, shape[dim+1:]...)
	return cpu.Reshape(x, newShape)
}

// Narrow selects [start, start+length) along the given dimension.
func (cpu *CPUBackend) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("narrow: dimension %d out of range for shape %v", dim, shape))
	}
	if start < 0 || length <= 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension %d (size %d)",
			start, start+length, dim, shape[dim]))
	}

	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < ndim; i++ {
		inner *= shape[i]
	}

	outShape := shape.Clone()
	outShape[dim] = length

	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("narrow: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for o := 0; o < outer; o++ {
			copy(dst[o*length*inner:(o+1)*length*inner], src[(o*shape[dim]+start)*inner:(o*shape[dim]+start+length)*inner])
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for o := 0; o < outer; o++ {
			copy(dst[o*length*inner:(o+1)*length*inner], src[(o*shape[dim]+start)*inner:(o*shape[dim]+start+length)*inner])
		}
	}

	return result
}

// Cat concatenates tensors along the given dimension.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: need at least one tensor")
	}

	first := tensors[0]
	shape := first.Shape()
	ndim := len(shape)
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("cat: dimension %d out of range for shape %v", dim, shape))
	}

	catSize := 0
	for _, t := range tensors {
		ts := t.Shape()
		if len(ts) != ndim {
			panic(fmt.Sprintf("cat: rank mismatch: %v vs %v", shape, ts))
		}
		for d := 0; d < ndim; d++ {
			if d != dim && ts[d] != shape[d] {
				panic(fmt.Sprintf("cat: shape mismatch at dimension %d: %v vs %v", d, shape, ts))
			}
		}
		if t.DType() != first.DType() {
			panic("cat: dtype mismatch")
		}
		catSize += ts[dim]
	}

	outShape := shape.Clone()
	outShape[dim] = catSize

	result, err := tensor.NewRaw(outShape, first.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < ndim; i++ {
		inner *= shape[i]
	}

	switch first.DType() {
	case tensor.Float32:
		dst := result.AsFloat32()
		for o := 0; o < outer; o++ {
			dstOff := o * catSize * inner
			for _, t := range tensors {
				src := t.AsFloat32()
				size := t.Shape()[dim] * inner
				copy(dst[dstOff:dstOff+size], src[o*size:(o+1)*size])
				dstOff += size
			}
		}
	case tensor.Float64:
		dst := result.AsFloat64()
		for o := 0; o < outer; o++ {
			dstOff := o * catSize * inner
			for _, t := range tensors {
				src := t.AsFloat64()
				size := t.Shape()[dim] * inner
				copy(dst[dstOff:dstOff+size], src[o*size:(o+1)*size])
				dstOff += size
			}
		}
	}

	return result
}
