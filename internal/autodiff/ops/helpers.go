package ops

import "github.com/gopinn/gopinn/internal/tensor"

// reduceBroadcast reduces a gradient back to the shape of a forward-pass
// input that was broadcast. Broadcast dimensions receive the sum of the
// gradients that flowed through them.
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}

	result := grad

	// Leading dimensions that do not exist in the target are summed away.
	for len(result.Shape()) > len(targetShape) {
		result = backend.SumDim(result, 0, false)
	}

	// Dimensions broadcast from size 1 are summed keeping the dimension.
	for d := 0; d < len(targetShape); d++ {
		if targetShape[d] == 1 && result.Shape()[d] != 1 {
			result = backend.SumDim(result, d, true)
		}
	}

	return result
}

// neg returns the element-wise negation.
func neg(x *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	return backend.MulScalar(x, -1)
}
