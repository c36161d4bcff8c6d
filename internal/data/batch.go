// Package data defines the batch records consumed by loss evaluation and
// the generators that sample them from the training domain.
package data

import "github.com/gopinn/gopinn/internal/tensor"

// ODEBatch is one mini-batch of an ODE problem: temporal collocation
// points of shape (n, 1) and an optional per-sample equation-parameter
// batch whose leaves share the same leading length n. Batches are
// immutable value objects.
type ODEBatch[B tensor.Backend] struct {
	Temporal *tensor.Tensor[float32, B]
	Params   map[string]*tensor.Tensor[float32, B]
}

// PDEStatioBatch is one mini-batch of a stationary PDE problem: interior
// collocation points of shape (n, d) and boundary points of shape
// (nb, d, facets) with 2 facets for d=1 and 4 for d=2.
type PDEStatioBatch[B tensor.Backend] struct {
	Interior *tensor.Tensor[float32, B]
	Border   *tensor.Tensor[float32, B]
	Params   map[string]*tensor.Tensor[float32, B]
}

// PDENonStatioBatch extends the stationary record with temporal samples
// zipped against the interior points.
type PDENonStatioBatch[B tensor.Backend] struct {
	Temporal *tensor.Tensor[float32, B]
	Interior *tensor.Tensor[float32, B]
	Border   *tensor.Tensor[float32, B]
	Params   map[string]*tensor.Tensor[float32, B]
}

// ObservedBatch carries externally observed solution values at fixed
// inputs, for the observation-fit term. Inputs has shape (n, d) and
// Values (n, c).
type ObservedBatch[B tensor.Backend] struct {
	Inputs *tensor.Tensor[float32, B]
	Values *tensor.Tensor[float32, B]
}
