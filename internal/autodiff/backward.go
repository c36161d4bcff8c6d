package autodiff

import (
	"fmt"

	"github.com/gopinn/gopinn/internal/tensor"
)

// BackwardCapable is implemented by backends that can compute gradients.
type BackwardCapable interface {
	Tape() *GradientTape
}

// Backward computes gradients of t with respect to every tensor on the
// tape. The seed gradient is a ones tensor shaped like t, so t is
// normally a scalar loss.
//
// The returned map is keyed by raw tensor identity: look up grads with
// the same *RawTensor headers that produced the forward pass.
func Backward[T tensor.DType, B tensor.Backend](t *tensor.Tensor[T, B], backend B) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	capable, ok := any(backend).(BackwardCapable)
	if !ok {
		return nil, fmt.Errorf("backend %s does not support backward", backend.Name())
	}

	tape := capable.Tape()
	if tape.NumOps() == 0 {
		return nil, fmt.Errorf("no operations recorded on tape")
	}

	seed := onesLike(t.Raw())
	return tape.Backward(seed, backend), nil
}

// onesLike builds a ones tensor with the same shape and dtype as x.
func onesLike(x *tensor.RawTensor) *tensor.RawTensor {
	out, err := tensor.NewRaw(x.Shape(), x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("onesLike: %v", err))
	}
	switch x.DType() {
	case tensor.Float32:
		data := out.AsFloat32()
		for i := range data {
			data[i] = 1
		}
	case tensor.Float64:
		data := out.AsFloat64()
		for i := range data {
			data[i] = 1
		}
	}
	return out
}
