package cpu

import (
	"fmt"

	"github.com/gopinn/gopinn/internal/parallel"
	"github.com/gopinn/gopinn/internal/tensor"
)

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("matmul: inner dimensions must match: %v @ %v", aShape, bShape))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch: %s vs %s", a.DType(), b.DType()))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]

	result, err := tensor.NewRaw(tensor.Shape{m, n}, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("matmul: %v", err))
	}

	// Output rows are independent, so the outer loop parallelizes
	// without synchronization.
	switch a.DType() {
	case tensor.Float32:
		src1, src2 := a.AsFloat32(), b.AsFloat32()
		dst := result.AsFloat32()
		parallel.For(m, func(i int) {
			for p := 0; p < k; p++ {
				v := src1[i*k+p]
				if v == 0 {
					continue
				}
				row := src2[p*n : (p+1)*n]
				out := dst[i*n : (i+1)*n]
				for j, w := range row {
					out[j] += v * w
				}
			}
		}, cpu.par)
	case tensor.Float64:
		src1, src2 := a.AsFloat64(), b.AsFloat64()
		dst := result.AsFloat64()
		parallel.For(m, func(i int) {
			for p := 0; p < k; p++ {
				v := src1[i*k+p]
				if v == 0 {
					continue
				}
				row := src2[p*n : (p+1)*n]
				out := dst[i*n : (i+1)*n]
				for j, w := range row {
					out[j] += v * w
				}
			}
		}, cpu.par)
	}

	return result
}
