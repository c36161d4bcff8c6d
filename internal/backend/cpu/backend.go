// Package cpu implements the pure-Go CPU backend for gopinn tensors.
package cpu

import (
	"fmt"

	"github.com/gopinn/gopinn/internal/parallel"
	"github.com/gopinn/gopinn/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
//
// Kernels panic on shape or dtype misuse. The loss core validates user
// configuration at construction time, so reachable panics indicate
// programming errors, not bad user input.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    parallel.DefaultConfig(),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("div", a, b,
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y })
}

// binaryOp applies an element-wise binary kernel with broadcasting.
func (cpu *CPUBackend) binaryOp(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	n := outShape.NumElements()
	switch a.DType() {
	case tensor.Float32:
		src1, src2 := a.AsFloat32(), b.AsFloat32()
		dst := result.AsFloat32()
		for i := 0; i < n; i++ {
			dst[i] = f32(src1[broadcastIndex(i, a.Shape(), outShape)], src2[broadcastIndex(i, b.Shape(), outShape)])
		}
	case tensor.Float64:
		src1, src2 := a.AsFloat64(), b.AsFloat64()
		dst := result.AsFloat64()
		for i := 0; i < n; i++ {
			dst[i] = f64(src1[broadcastIndex(i, a.Shape(), outShape)], src2[broadcastIndex(i, b.Shape(), outShape)])
		}
	}

	return result
}

// broadcastIndex maps a flat index into the broadcast output shape back to
// a flat index into the (possibly smaller) source shape.
func broadcastIndex(flat int, srcShape, dstShape tensor.Shape) int {
	if srcShape.Equal(dstShape) {
		return flat
	}

	srcStrides := srcShape.ComputeStrides()
	dstStrides := dstShape.ComputeStrides()

	srcIdx := 0
	temp := flat
	for d := 0; d < len(dstShape); d++ {
		coord := temp / dstStrides[d]
		temp %= dstStrides[d]

		srcDim := d - (len(dstShape) - len(srcShape))
		if srcDim >= 0 && srcDim < len(srcShape) {
			if srcShape[srcDim] == 1 {
				coord = 0
			}
			srcIdx += coord * srcStrides[srcDim]
		}
	}
	return srcIdx
}
