package pinn

import (
	"fmt"

	"github.com/gopinn/gopinn/internal/data"
	"github.com/gopinn/gopinn/internal/tensor"
)

// statioTerms is the recognized term set for stationary PDE losses.
var statioTerms = []string{TermDynamic, TermBoundary, TermNorm, TermSobolev, TermObservations}

// nonStatioTerms adds the initial condition for time-dependent problems.
var nonStatioTerms = []string{TermDynamic, TermInitial, TermBoundary, TermNorm, TermSobolev, TermObservations}

// PDEStatioConfig assembles a stationary-PDE loss over a 1-D or 2-D box.
type PDEStatioConfig[B tensor.Backend] struct {
	Approximator  Approximator[B]
	Dynamic       DynamicLoss[B]
	Boundary      *BoundaryConditions[B]
	Normalization *Normalization[B]
	Sobolev       SobolevRegularizer[B]
	Observations  *data.ObservedBatch[B]

	Weights        map[string]TermWeight
	DerivativeKeys DerivativeKeys
}

// PDEStatioLoss composes interior-residual, boundary, normalization,
// Sobolev and observation terms for a stationary PDE.
type PDEStatioLoss[B tensor.Backend] struct {
	u       Approximator[B]
	dyn     DynamicLoss[B]
	bc      *BoundaryConditions[B]
	norm    *Normalization[B]
	sobolev SobolevRegularizer[B]
	obs     *data.ObservedBatch[B]
	weights Weights
	keys    DerivativeKeys
}

// NewPDEStatioLoss validates the configuration and returns the loss.
func NewPDEStatioLoss[B tensor.Backend](cfg PDEStatioConfig[B]) (*PDEStatioLoss[B], error) {
	if cfg.Approximator == nil {
		return nil, fmt.Errorf("pde loss: approximator is required")
	}
	weights, err := NewWeights(cfg.Weights, statioTerms...)
	if err != nil {
		return nil, err
	}
	var absent []string
	if cfg.Dynamic == nil {
		absent = append(absent, TermDynamic)
	}
	if cfg.Boundary == nil {
		absent = append(absent, TermBoundary)
	}
	if cfg.Normalization == nil {
		absent = append(absent, TermNorm)
	}
	if cfg.Sobolev == nil {
		absent = append(absent, TermSobolev)
	}
	if cfg.Observations == nil {
		absent = append(absent, TermObservations)
	}
	weights = weights.withZero(absent...)

	keys := cfg.DerivativeKeys
	if keys == nil {
		keys = DerivativeKeys{}
	}
	return &PDEStatioLoss[B]{
		u:       cfg.Approximator,
		dyn:     cfg.Dynamic,
		bc:      cfg.Boundary,
		norm:    cfg.Normalization,
		sobolev: cfg.Sobolev,
		obs:     cfg.Observations,
		weights: weights,
		keys:    keys,
	}, nil
}

// Evaluate computes (total, breakdown) for one stationary batch.
func (l *PDEStatioLoss[B]) Evaluate(tree ParamTree[B], batch data.PDEStatioBatch[B]) (*tensor.Tensor[float32, B], map[string]*tensor.Tensor[float32, B], error) {
	if batch.Interior == nil {
		return nil, nil, fmt.Errorf("%w: batch has no interior samples", ErrShapeMismatch)
	}
	backend := batch.Interior.Backend()

	merged, err := tree.Merge(batch.Params)
	if err != nil {
		return nil, nil, err
	}
	axes := AxisSpec{
		Inputs:   []int{0},
		EqParams: ParamAxes(sortedKeys(batch.Params)),
	}

	breakdown := make(map[string]*tensor.Tensor[float32, B], len(statioTerms))

	breakdown[TermDynamic], err = dynamicTerm(l.dyn, l.u,
		SelectDerivatives(merged, TermDynamic, l.keys),
		[]*tensor.Tensor[float32, B]{batch.Interior}, axes,
		l.weights[TermDynamic], backend)
	if err != nil {
		return nil, nil, err
	}

	breakdown[TermBoundary], err = boundaryTerm(l.bc, l.u,
		SelectDerivatives(merged, TermBoundary, l.keys),
		batch.Border, nil, l.weights[TermBoundary], backend)
	if err != nil {
		return nil, nil, err
	}

	breakdown[TermNorm], err = normalizationTerm(l.norm, l.u,
		SelectDerivatives(merged, TermNorm, l.keys),
		l.weights[TermNorm], backend)
	if err != nil {
		return nil, nil, err
	}

	breakdown[TermSobolev], err = sobolevTerm(l.sobolev, batch.Interior, l.u,
		SelectDerivatives(merged, TermSobolev, l.keys),
		l.weights[TermSobolev], backend)
	if err != nil {
		return nil, nil, err
	}

	breakdown[TermObservations], err = observationTerm(l.obs, l.u,
		SelectDerivatives(merged, TermObservations, l.keys),
		l.weights[TermObservations], backend)
	if err != nil {
		return nil, nil, err
	}

	total := zeroTerm(backend)
	for _, term := range sortedKeys(breakdown) {
		total = total.Add(breakdown[term])
	}
	return total, breakdown, nil
}

// SpatialInitialCondition pins the solution at t0 across the spatial
// domain for time-dependent PDEs. Value returns the prescribed initial
// value at a single spatial point of shape (1, d).
type SpatialInitialCondition[B tensor.Backend] struct {
	T0    float64
	Value func(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error)
}

func (ic *SpatialInitialCondition[B]) validate() error {
	if ic == nil {
		return nil
	}
	if ic.Value == nil {
		return fmt.Errorf("%w: missing initial value function", ErrBadInitialCondition)
	}
	return nil
}

// PDENonStatioConfig assembles a time-dependent PDE loss.
type PDENonStatioConfig[B tensor.Backend] struct {
	Approximator  Approximator[B]
	Dynamic       DynamicLoss[B]
	Initial       *SpatialInitialCondition[B]
	Boundary      *BoundaryConditions[B]
	Normalization *Normalization[B]
	Sobolev       SobolevRegularizer[B]
	Observations  *data.ObservedBatch[B]

	Weights        map[string]TermWeight
	DerivativeKeys DerivativeKeys
}

// PDENonStatioLoss composes the stationary terms with an initial
// condition evaluated across the spatial batch at t0. Approximator inputs
// are [t, x].
type PDENonStatioLoss[B tensor.Backend] struct {
	u       Approximator[B]
	dyn     DynamicLoss[B]
	initial *SpatialInitialCondition[B]
	bc      *BoundaryConditions[B]
	norm    *Normalization[B]
	sobolev SobolevRegularizer[B]
	obs     *data.ObservedBatch[B]
	weights Weights
	keys    DerivativeKeys
}

// NewPDENonStatioLoss validates the configuration and returns the loss.
func NewPDENonStatioLoss[B tensor.Backend](cfg PDENonStatioConfig[B]) (*PDENonStatioLoss[B], error) {
	if cfg.Approximator == nil {
		return nil, fmt.Errorf("pde loss: approximator is required")
	}
	if err := cfg.Initial.validate(); err != nil {
		return nil, err
	}
	weights, err := NewWeights(cfg.Weights, nonStatioTerms...)
	if err != nil {
		return nil, err
	}
	var absent []string
	if cfg.Dynamic == nil {
		absent = append(absent, TermDynamic)
	}
	if cfg.Initial == nil {
		absent = append(absent, TermInitial)
	}
	if cfg.Boundary == nil {
		absent = append(absent, TermBoundary)
	}
	if cfg.Normalization == nil {
		absent = append(absent, TermNorm)
	}
	if cfg.Sobolev == nil {
		absent = append(absent, TermSobolev)
	}
	if cfg.Observations == nil {
		absent = append(absent, TermObservations)
	}
	weights = weights.withZero(absent...)

	keys := cfg.DerivativeKeys
	if keys == nil {
		keys = DerivativeKeys{}
	}
	return &PDENonStatioLoss[B]{
		u:       cfg.Approximator,
		dyn:     cfg.Dynamic,
		initial: cfg.Initial,
		bc:      cfg.Boundary,
		norm:    cfg.Normalization,
		sobolev: cfg.Sobolev,
		obs:     cfg.Observations,
		weights: weights,
		keys:    keys,
	}, nil
}

// Evaluate computes (total, breakdown) for one time-dependent batch. The
// temporal and interior batches are zipped on the leading axis.
func (l *PDENonStatioLoss[B]) Evaluate(tree ParamTree[B], batch data.PDENonStatioBatch[B]) (*tensor.Tensor[float32, B], map[string]*tensor.Tensor[float32, B], error) {
	if batch.Temporal == nil || batch.Interior == nil {
		return nil, nil, fmt.Errorf("%w: batch needs temporal and interior samples", ErrShapeMismatch)
	}
	backend := batch.Interior.Backend()

	merged, err := tree.Merge(batch.Params)
	if err != nil {
		return nil, nil, err
	}
	axes := AxisSpec{
		Inputs:   []int{0, 0},
		EqParams: ParamAxes(sortedKeys(batch.Params)),
	}

	breakdown := make(map[string]*tensor.Tensor[float32, B], len(nonStatioTerms))

	breakdown[TermDynamic], err = dynamicTerm(l.dyn, l.u,
		SelectDerivatives(merged, TermDynamic, l.keys),
		[]*tensor.Tensor[float32, B]{batch.Temporal, batch.Interior}, axes,
		l.weights[TermDynamic], backend)
	if err != nil {
		return nil, nil, err
	}

	breakdown[TermInitial], err = l.initialTerm(merged, batch, backend)
	if err != nil {
		return nil, nil, err
	}

	breakdown[TermBoundary], err = boundaryTerm(l.bc, l.u,
		SelectDerivatives(merged, TermBoundary, l.keys),
		batch.Border, batch.Temporal, l.weights[TermBoundary], backend)
	if err != nil {
		return nil, nil, err
	}

	breakdown[TermNorm], err = normalizationTerm(l.norm, l.u,
		SelectDerivatives(merged, TermNorm, l.keys),
		l.weights[TermNorm], backend)
	if err != nil {
		return nil, nil, err
	}

	breakdown[TermSobolev], err = sobolevTerm(l.sobolev, batch.Interior, l.u,
		SelectDerivatives(merged, TermSobolev, l.keys),
		l.weights[TermSobolev], backend)
	if err != nil {
		return nil, nil, err
	}

	breakdown[TermObservations], err = observationTerm(l.obs, l.u,
		SelectDerivatives(merged, TermObservations, l.keys),
		l.weights[TermObservations], backend)
	if err != nil {
		return nil, nil, err
	}

	total := zeroTerm(backend)
	for _, term := range sortedKeys(breakdown) {
		total = total.Add(breakdown[term])
	}
	return total, breakdown, nil
}

// initialTerm compares u(t0, x) against the prescribed initial value
// across the spatial batch.
func (l *PDENonStatioLoss[B]) initialTerm(merged ParamTree[B], batch data.PDENonStatioBatch[B], backend B) (*tensor.Tensor[float32, B], error) {
	w := l.weights[TermInitial]
	if l.initial == nil || w.IsZero() {
		return zeroTerm(backend), nil
	}
	if l.u.Kind() != Pointwise {
		return nil, fmt.Errorf("%w: initial condition for %s approximators", ErrNotImplemented, l.u.Kind())
	}
	tree := SelectDerivatives(merged, TermInitial, l.keys)
	t0 := tensor.Full(tensor.Shape{1, 1}, float32(l.initial.T0), backend)

	res, err := Apply(func(rows []*tensor.Tensor[float32, B], t ParamTree[B]) (*tensor.Tensor[float32, B], error) {
		pred, err := l.u.Eval([]*tensor.Tensor[float32, B]{t0, rows[0]}, t)
		if err != nil {
			return nil, err
		}
		want, err := l.initial.Value(rows[0])
		if err != nil {
			return nil, err
		}
		pred = as2D(pred)
		if err := reconcileShapes(pred.Shape(), want.Shape(), "initial value"); err != nil {
			return nil, err
		}
		return pred.Sub(want), nil
	}, []*tensor.Tensor[float32, B]{batch.Interior}, tree, AxisSpec{Inputs: []int{0}}, Pointwise)
	if err != nil {
		return nil, fmt.Errorf("initial condition: %w", err)
	}
	return weightedMSE(res, w)
}
