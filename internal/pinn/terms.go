package pinn

import (
	"fmt"

	"github.com/gopinn/gopinn/internal/data"
	"github.com/gopinn/gopinn/internal/tensor"
)

// zeroTerm is the contribution of a term whose supporting data is absent.
func zeroTerm[B tensor.Backend](backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](tensor.Shape{1}, backend)
}

// as2D presents a residual as (samples, channels).
func as2D[B tensor.Backend](res *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := res.Shape()
	if len(shape) == 2 {
		return res
	}
	if len(shape) == 1 {
		return res.Reshape(shape[0], 1)
	}
	return res.Reshape(shape[0], res.NumElements()/shape[0])
}

// weightedMSE reduces a residual to its weighted mean squared error: the
// squared residual is weighted (scalar or per channel), summed over
// channels and averaged over samples.
func weightedMSE[B tensor.Backend](res *tensor.Tensor[float32, B], w TermWeight) (*tensor.Tensor[float32, B], error) {
	res = as2D(res)
	sq := res.Square()
	if len(w.PerChannel) > 0 {
		channels := sq.Shape()[1]
		if channels != len(w.PerChannel) {
			return nil, fmt.Errorf("%w: %d weight channels for %d output channels", ErrShapeMismatch, len(w.PerChannel), channels)
		}
		wt, err := tensor.FromSlice(append([]float32(nil), w.PerChannel...), tensor.Shape{1, channels}, res.Backend())
		if err != nil {
			return nil, err
		}
		sq = sq.Mul(wt)
	}
	mse := sq.SumDim(1, false).Mean()
	if len(w.PerChannel) == 0 && w.Value != 1 {
		mse = mse.MulScalar(float64(w.Value))
	}
	return mse, nil
}

// reconcileShapes checks that a user-provided reference broadcasts to the
// predicted shape without truncation.
func reconcileShapes(predicted, reference tensor.Shape, what string) error {
	broadcast, _, err := tensor.BroadcastShapes(predicted, reference)
	if err != nil || !broadcast.Equal(predicted) {
		return fmt.Errorf("%w: %s has shape %v, predicted %v", ErrShapeMismatch, what, reference, predicted)
	}
	return nil
}

// dynamicTerm is the weighted MSE of the differential-operator residual
// over the collocation batch.
func dynamicTerm[B tensor.Backend](
	op DynamicLoss[B],
	u Approximator[B],
	tree ParamTree[B],
	inputs []*tensor.Tensor[float32, B],
	axes AxisSpec,
	w TermWeight,
	backend B,
) (*tensor.Tensor[float32, B], error) {
	if op == nil || w.IsZero() {
		return zeroTerm(backend), nil
	}
	res, err := Apply(func(rows []*tensor.Tensor[float32, B], t ParamTree[B]) (*tensor.Tensor[float32, B], error) {
		return op.Residual(rows, u, t)
	}, inputs, tree, axes, u.Kind())
	if err != nil {
		return nil, fmt.Errorf("dynamics residual: %w", err)
	}
	return weightedMSE(res, w)
}

// InitialCondition fixes the solution value at the initial time. For an
// ODE the comparison is a single evaluation at t0; for a non-stationary
// PDE the condition function is compared across the spatial batch.
type InitialCondition[B tensor.Backend] struct {
	T0 float64
	U0 *tensor.Tensor[float32, B]
}

func (ic *InitialCondition[B]) validate() error {
	if ic == nil {
		return nil
	}
	if ic.U0 == nil {
		return fmt.Errorf("%w: missing initial value", ErrBadInitialCondition)
	}
	return nil
}

// initialTerm is the weighted MSE between the approximator at t0 and the
// given initial value.
func initialTerm[B tensor.Backend](
	ic *InitialCondition[B],
	u Approximator[B],
	tree ParamTree[B],
	w TermWeight,
	backend B,
) (*tensor.Tensor[float32, B], error) {
	if ic == nil || w.IsZero() {
		return zeroTerm(backend), nil
	}
	if u.Kind() != Pointwise {
		return nil, fmt.Errorf("%w: initial condition for %s approximators", ErrNotImplemented, u.Kind())
	}
	t0 := tensor.Full(tensor.Shape{1, 1}, float32(ic.T0), backend)
	pred, err := u.Eval([]*tensor.Tensor[float32, B]{t0}, tree)
	if err != nil {
		return nil, fmt.Errorf("initial condition: %w", err)
	}
	pred = as2D(pred)
	if err := reconcileShapes(pred.Shape(), ic.U0.Shape(), "initial value"); err != nil {
		return nil, err
	}
	diff := pred.Sub(ic.U0.Detach())
	return weightedMSE(diff, w)
}

// observationTerm compares the approximator against externally observed
// values at fixed inputs, restricted to the approximator's output-channel
// slice.
func observationTerm[B tensor.Backend](
	obs *data.ObservedBatch[B],
	u Approximator[B],
	tree ParamTree[B],
	w TermWeight,
	backend B,
) (*tensor.Tensor[float32, B], error) {
	if obs == nil || w.IsZero() {
		return zeroTerm(backend), nil
	}
	if u.Kind() != Pointwise {
		return nil, fmt.Errorf("%w: observation loss for %s approximators", ErrNotImplemented, u.Kind())
	}
	axes := AxisSpec{Inputs: []int{0}}
	pred, err := Apply(func(rows []*tensor.Tensor[float32, B], t ParamTree[B]) (*tensor.Tensor[float32, B], error) {
		return u.Eval(rows, t)
	}, []*tensor.Tensor[float32, B]{obs.Inputs}, tree, axes, Pointwise)
	if err != nil {
		return nil, fmt.Errorf("observation loss: %w", err)
	}
	if slice := u.Slice(); slice.Length > 0 {
		pred = pred.Narrow(1, slice.Start, slice.Length)
	}
	if err := reconcileShapes(pred.Shape(), obs.Values.Shape(), "observed values"); err != nil {
		return nil, err
	}
	diff := pred.Sub(obs.Values.Detach())
	return weightedMSE(diff, w)
}

// Normalization is the integral-normalization penalty: the
// quadrature-weighted mean prediction over the sample set, times the
// domain measure, should be 1. With TimeSamples set, the penalty is the
// mean over time of the per-time deviation (space by time form).
type Normalization[B tensor.Backend] struct {
	Samples     *tensor.Tensor[float32, B]
	TimeSamples *tensor.Tensor[float32, B]
	Measure     float64
}

// normalizationTerm computes the weighted squared deviation of the
// normalization integral from 1.
func normalizationTerm[B tensor.Backend](
	norm *Normalization[B],
	u Approximator[B],
	tree ParamTree[B],
	w TermWeight,
	backend B,
) (*tensor.Tensor[float32, B], error) {
	if norm == nil || w.IsZero() {
		return zeroTerm(backend), nil
	}
	if u.Kind() != Pointwise {
		return nil, fmt.Errorf("%w: normalization for %s approximators", ErrNotImplemented, u.Kind())
	}

	integral := func(inputs []*tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
		pred, err := Apply(func(rows []*tensor.Tensor[float32, B], t ParamTree[B]) (*tensor.Tensor[float32, B], error) {
			return u.Eval(rows, t)
		}, inputs, tree, AxisSpec{Inputs: InputAxes(len(inputs))}, Pointwise)
		if err != nil {
			return nil, err
		}
		return pred.Mean().MulScalar(norm.Measure), nil
	}

	if norm.TimeSamples == nil {
		v, err := integral([]*tensor.Tensor[float32, B]{norm.Samples})
		if err != nil {
			return nil, fmt.Errorf("normalization: %w", err)
		}
		return weightedMSE(v.SubScalar(1), w)
	}

	// Space by time: one spatial integral per time sample, all pinned
	// to 1, averaged over time.
	nt := norm.TimeSamples.Shape()[0]
	devs := make([]*tensor.Tensor[float32, B], 0, nt)
	for i := 0; i < nt; i++ {
		ti := norm.TimeSamples.Narrow(0, i, 1)
		v, err := integral([]*tensor.Tensor[float32, B]{ti.Expand(tensor.Shape{norm.Samples.Shape()[0], ti.NumElements()}), norm.Samples})
		if err != nil {
			return nil, fmt.Errorf("normalization at time %d: %w", i, err)
		}
		devs = append(devs, v.SubScalar(1).Reshape(1, 1))
	}
	dev := devs[0]
	if len(devs) > 1 {
		dev = tensor.Cat(devs, 0)
	}
	return weightedMSE(dev, w)
}

// SobolevRegularizer is a user-supplied per-sample penalty, typically a
// derivative-magnitude estimate.
type SobolevRegularizer[B tensor.Backend] func(sample *tensor.Tensor[float32, B], u Approximator[B], tree ParamTree[B]) (*tensor.Tensor[float32, B], error)

// sobolevTerm is the weighted mean of the regularizer over samples.
func sobolevTerm[B tensor.Backend](
	reg SobolevRegularizer[B],
	samples *tensor.Tensor[float32, B],
	u Approximator[B],
	tree ParamTree[B],
	w TermWeight,
	backend B,
) (*tensor.Tensor[float32, B], error) {
	if reg == nil || samples == nil || w.IsZero() {
		return zeroTerm(backend), nil
	}
	if u.Kind() != Pointwise {
		return nil, fmt.Errorf("%w: sobolev regularization for %s approximators", ErrNotImplemented, u.Kind())
	}
	vals, err := Apply(func(rows []*tensor.Tensor[float32, B], t ParamTree[B]) (*tensor.Tensor[float32, B], error) {
		return reg(rows[0], u, t)
	}, []*tensor.Tensor[float32, B]{samples}, tree, AxisSpec{Inputs: []int{0}}, Pointwise)
	if err != nil {
		return nil, fmt.Errorf("sobolev regularization: %w", err)
	}
	mean := vals.Mean()
	if w.Value != 1 {
		mean = mean.MulScalar(float64(w.Value))
	}
	return mean, nil
}
