package pinn

import (
	"fmt"

	"github.com/gopinn/gopinn/internal/data"
	"github.com/gopinn/gopinn/internal/tensor"
)

// SystemDynamicLoss is one coupled equation's differential operator. It
// sees every solution component, since coupled residuals mix them.
type SystemDynamicLoss[B tensor.Backend] interface {
	Residual(inputs []*tensor.Tensor[float32, B], us map[string]Approximator[B], tree ParamTree[B]) (*tensor.Tensor[float32, B], error)
}

// SystemDynamicFunc adapts a plain function to SystemDynamicLoss.
type SystemDynamicFunc[B tensor.Backend] func(inputs []*tensor.Tensor[float32, B], us map[string]Approximator[B], tree ParamTree[B]) (*tensor.Tensor[float32, B], error)

func (f SystemDynamicFunc[B]) Residual(inputs []*tensor.Tensor[float32, B], us map[string]Approximator[B], tree ParamTree[B]) (*tensor.Tensor[float32, B], error) {
	return f(inputs, us, tree)
}

// SystemConfig assembles a coupled-system loss. Approximators is keyed by
// solution component id; Dynamics by coupled-equation id (its key set is
// independent). Every other per-equation map must carry exactly the
// approximator key set.
type SystemConfig[B tensor.Backend] struct {
	Approximators map[string]Approximator[B]
	Dynamics      map[string]SystemDynamicLoss[B]
	Initials      map[string]*InitialCondition[B]
	Observations  map[string]*data.ObservedBatch[B]

	// DerivativeKeys, keyed by solution id, governs the initial-condition
	// and observation terms of that component.
	DerivativeKeys map[string]DerivativeKeys

	// DynamicsDerivativeKeys, keyed by coupled-equation id, governs the
	// dynamics residual terms.
	DynamicsDerivativeKeys map[string][]string

	Weights map[string]SystemWeight
}

// SystemLoss composes the dynamics residuals of the coupled equations
// with per-component initial-condition and observation losses, all
// sharing one parameter tree. Internally each component reuses an
// EquationLoss with its dynamics term disabled; dynamics residuals are
// evaluated per coupled equation instead.
type SystemLoss[B tensor.Backend] struct {
	us       map[string]Approximator[B]
	dynamics map[string]SystemDynamicLoss[B]
	dynKeys  map[string][]string
	subs     map[string]*EquationLoss[B]
	weights  SystemWeights
	kind     Kind
}

// NewSystemLoss validates key-set consistency and weights, then builds
// the per-component sub-losses.
func NewSystemLoss[B tensor.Backend](cfg SystemConfig[B]) (*SystemLoss[B], error) {
	if len(cfg.Approximators) == 0 {
		return nil, fmt.Errorf("system loss: no approximators")
	}

	kind := Kind(-1)
	for _, k := range sortedKeys(cfg.Approximators) {
		uk := cfg.Approximators[k].Kind()
		if kind == Kind(-1) {
			kind = uk
		} else if uk != kind {
			return nil, fmt.Errorf("%w: mixed approximator kinds in one system", ErrNotImplemented)
		}
	}

	if cfg.Initials != nil && !sameKeySet(cfg.Initials, cfg.Approximators) {
		return nil, fmt.Errorf("%w: initial conditions keyed %v, approximators %v",
			ErrKeyMismatch, sortedKeys(cfg.Initials), sortedKeys(cfg.Approximators))
	}
	if cfg.Observations != nil && !sameKeySet(cfg.Observations, cfg.Approximators) {
		return nil, fmt.Errorf("%w: observations keyed %v, approximators %v",
			ErrKeyMismatch, sortedKeys(cfg.Observations), sortedKeys(cfg.Approximators))
	}
	if cfg.DerivativeKeys != nil && !sameKeySet(cfg.DerivativeKeys, cfg.Approximators) {
		return nil, fmt.Errorf("%w: derivative keys keyed %v, approximators %v",
			ErrKeyMismatch, sortedKeys(cfg.DerivativeKeys), sortedKeys(cfg.Approximators))
	}
	if cfg.DynamicsDerivativeKeys != nil && !sameKeySet(cfg.DynamicsDerivativeKeys, cfg.Dynamics) {
		return nil, fmt.Errorf("%w: dynamics derivative keys keyed %v, dynamics %v",
			ErrKeyMismatch, sortedKeys(cfg.DynamicsDerivativeKeys), sortedKeys(cfg.Dynamics))
	}

	dynSet := make(map[string]bool, len(cfg.Dynamics))
	for k := range cfg.Dynamics {
		dynSet[k] = true
	}
	solSet := make(map[string]bool, len(cfg.Approximators))
	for k := range cfg.Approximators {
		solSet[k] = true
	}
	weights, err := NewSystemWeights(cfg.Weights, dynSet, solSet)
	if err != nil {
		return nil, err
	}

	subs := make(map[string]*EquationLoss[B], len(cfg.Approximators))
	for id, u := range cfg.Approximators {
		var initial *InitialCondition[B]
		if cfg.Initials != nil {
			initial = cfg.Initials[id]
		}
		var obs *data.ObservedBatch[B]
		if cfg.Observations != nil {
			obs = cfg.Observations[id]
		}
		var keys DerivativeKeys
		if cfg.DerivativeKeys != nil {
			keys = cfg.DerivativeKeys[id]
		}
		sub, err := NewEquationLoss(EquationConfig[B]{
			Approximator: u,
			Initial:      initial,
			Observations: obs,
			Weights: map[string]TermWeight{
				TermInitial:      Scalar(weights[TermInitial].For(id)),
				TermObservations: Scalar(weights[TermObservations].For(id)),
			},
			DerivativeKeys: keys,
		})
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", id, err)
		}
		subs[id] = sub
	}

	return &SystemLoss[B]{
		us:       cfg.Approximators,
		dynamics: cfg.Dynamics,
		dynKeys:  cfg.DynamicsDerivativeKeys,
		subs:     subs,
		weights:  weights,
		kind:     kind,
	}, nil
}

// Evaluate computes (total, breakdown) for one batch. When nn_params is
// keyed per equation, its key set must match the approximators. The
// dyn_loss breakdown entry is exactly the sum of the coupled-equation
// residual terms, counted once; the total equals the breakdown sum.
func (l *SystemLoss[B]) Evaluate(tree ParamTree[B], batch data.ODEBatch[B]) (*tensor.Tensor[float32, B], map[string]*tensor.Tensor[float32, B], error) {
	if batch.Temporal == nil {
		return nil, nil, fmt.Errorf("%w: batch has no temporal samples", ErrShapeMismatch)
	}
	if tree.NNByEq != nil && !sameKeySet(tree.NNByEq, l.us) {
		return nil, nil, fmt.Errorf("%w: nn_params keyed %v, approximators %v",
			ErrKeyMismatch, sortedKeys(tree.NNByEq), sortedKeys(l.us))
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

	dynSum := zeroTerm(backend)
	for _, id := range sortedKeys(l.dynamics) {
		op := l.dynamics[id]
		keys := DerivativeKeys{}
		if groups, ok := l.dynKeys[id]; ok {
			keys[TermDynamic] = groups
		}
		selected := SelectDerivatives(merged, TermDynamic, keys)

		w := l.weights[TermDynamic].For(id)
		if w == 0 {
			continue
		}
		res, err := Apply(func(rows []*tensor.Tensor[float32, B], t ParamTree[B]) (*tensor.Tensor[float32, B], error) {
			return op.Residual(rows, l.us, t)
		}, []*tensor.Tensor[float32, B]{batch.Temporal}, selected, axes, l.kind)
		if err != nil {
			return nil, nil, fmt.Errorf("dynamics %q: %w", id, err)
		}
		mse, err := weightedMSE(res, Scalar(w))
		if err != nil {
			return nil, nil, fmt.Errorf("dynamics %q: %w", id, err)
		}
		dynSum = dynSum.Add(mse)
	}

	var breakdown map[string]*tensor.Tensor[float32, B]
	for _, id := range sortedKeys(l.subs) {
		_, sub, err := l.subs[id].Evaluate(tree, batch)
		if err != nil {
			return nil, nil, fmt.Errorf("component %q: %w", id, err)
		}
		if breakdown == nil {
			breakdown = sub
			continue
		}
		breakdown, err = ZipReduce(breakdown, sub, func(a, b *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
			return a.Add(b)
		})
		if err != nil {
			return nil, nil, err
		}
	}

	// Sub-losses carry dyn_loss = 0; the coupled residual sum is added
	// once, so the breakdown entry and the total stay synchronized.
	breakdown[TermDynamic] = breakdown[TermDynamic].Add(dynSum)

	total := zeroTerm(backend)
	for _, term := range sortedKeys(breakdown) {
		total = total.Add(breakdown[term])
	}
	return total, breakdown, nil
}
