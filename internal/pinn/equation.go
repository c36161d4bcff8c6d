package pinn

import (
	"fmt"

	"github.com/gopinn/gopinn/internal/data"
	"github.com/gopinn/gopinn/internal/tensor"
)

// EquationConfig assembles a single-equation loss. Zero-valued optional
// fields (Dynamic, Initial, Observations) disable their terms; their
// weights are forced to 0 so an absent constraint can never reward a
// spuriously-zero residual.
type EquationConfig[B tensor.Backend] struct {
	Approximator Approximator[B]
	Dynamic      DynamicLoss[B]
	Initial      *InitialCondition[B]
	Observations *data.ObservedBatch[B]

	// Weights per term; missing recognized terms default to 1.
	Weights map[string]TermWeight

	// DerivativeKeys per term; missing terms differentiate nn_params
	// only.
	DerivativeKeys DerivativeKeys
}

// EquationLoss composes the dynamics, initial-condition and observation
// terms of one equation into a scalar objective plus a per-term
// breakdown. Construction validates everything; Evaluate is pure.
type EquationLoss[B tensor.Backend] struct {
	u       Approximator[B]
	dyn     DynamicLoss[B]
	initial *InitialCondition[B]
	obs     *data.ObservedBatch[B]
	weights Weights
	keys    DerivativeKeys
}

// NewEquationLoss validates the configuration and returns the loss.
func NewEquationLoss[B tensor.Backend](cfg EquationConfig[B]) (*EquationLoss[B], error) {
	if cfg.Approximator == nil {
		return nil, fmt.Errorf("equation loss: approximator is required")
	}
	if err := cfg.Initial.validate(); err != nil {
		return nil, err
	}
	weights, err := NewWeights(cfg.Weights)
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
	if cfg.Observations == nil {
		absent = append(absent, TermObservations)
	}
	weights = weights.withZero(absent...)

	keys := cfg.DerivativeKeys
	if keys == nil {
		keys = DerivativeKeys{}
	}
	return &EquationLoss[B]{
		u:       cfg.Approximator,
		dyn:     cfg.Dynamic,
		initial: cfg.Initial,
		obs:     cfg.Observations,
		weights: weights,
		keys:    keys,
	}, nil
}

// Weights exposes the validated, absence-adjusted weights.
func (l *EquationLoss[B]) Weights() Weights { return l.weights }

// Evaluate computes (total, breakdown) for one batch under the given
// parameters. The per-sample parameter batch, if present, is merged into
// eq_params and zipped along the temporal axis. Terms are independent;
// the total is exactly the sum of the breakdown.
func (l *EquationLoss[B]) Evaluate(tree ParamTree[B], batch data.ODEBatch[B]) (*tensor.Tensor[float32, B], map[string]*tensor.Tensor[float32, B], error) {
	if batch.Temporal == nil {
		return nil, nil, fmt.Errorf("%w: batch has no temporal samples", ErrShapeMismatch)
	}
	backend := batch.Temporal.Backend()

	merged, err := tree.Merge(batch.Params)
	if err != nil {
		return nil, nil, err
	}
	axes := AxisSpec{
		Inputs:   []int{0},
		EqParams: ParamAxes(sortedKeys(batch.Params)),
	}

	dynLoss, err := dynamicTerm(l.dyn, l.u,
		SelectDerivatives(merged, TermDynamic, l.keys),
		[]*tensor.Tensor[float32, B]{batch.Temporal}, axes,
		l.weights[TermDynamic], backend)
	if err != nil {
		return nil, nil, err
	}

	initLoss, err := initialTerm(l.initial, l.u,
		SelectDerivatives(merged, TermInitial, l.keys),
		l.weights[TermInitial], backend)
	if err != nil {
		return nil, nil, err
	}

	obsLoss, err := observationTerm(l.obs, l.u,
		SelectDerivatives(merged, TermObservations, l.keys),
		l.weights[TermObservations], backend)
	if err != nil {
		return nil, nil, err
	}

	breakdown := map[string]*tensor.Tensor[float32, B]{
		TermDynamic:      dynLoss,
		TermInitial:      initLoss,
		TermObservations: obsLoss,
	}
	total := dynLoss.Add(initLoss).Add(obsLoss)
	return total, breakdown, nil
}
