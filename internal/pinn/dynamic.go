package pinn

import "github.com/gopinn/gopinn/internal/tensor"

// DynamicLoss is a differential operator N[u]. Residual returns the
// equation residual at the given coordinates, ideally zero everywhere on
// the domain. The operator must follow the approximator's batching
// convention: pointwise operators receive single samples, grid-native
// operators receive whole batches.
type DynamicLoss[B tensor.Backend] interface {
	Residual(inputs []*tensor.Tensor[float32, B], u Approximator[B], tree ParamTree[B]) (*tensor.Tensor[float32, B], error)
}

// HorizonScaled is implemented by operators whose residual depends on the
// training time horizon (operators written in rescaled time). The
// curriculum controller produces new operators through WithHorizon between
// phases; nothing rescales inside the evaluate path.
type HorizonScaled[B tensor.Backend] interface {
	DynamicLoss[B]

	// Tmax reports the current horizon.
	Tmax() float64

	// WithHorizon returns a copy of the operator with a new horizon.
	WithHorizon(tmax float64) DynamicLoss[B]
}

// DynamicFunc adapts a plain function to the DynamicLoss interface.
type DynamicFunc[B tensor.Backend] func(inputs []*tensor.Tensor[float32, B], u Approximator[B], tree ParamTree[B]) (*tensor.Tensor[float32, B], error)

func (f DynamicFunc[B]) Residual(inputs []*tensor.Tensor[float32, B], u Approximator[B], tree ParamTree[B]) (*tensor.Tensor[float32, B], error) {
	return f(inputs, u, tree)
}
