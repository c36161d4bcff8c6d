// Package pinn implements loss composition for physics-informed neural
// networks: weighted constraint terms (dynamics residual, initial and
// boundary conditions, observation fit, normalization, Sobolev
// regularization) combined into a scalar objective plus a per-term
// breakdown, differentiable with respect to selectable parameter groups.
//
// Evaluation is pure: parameter trees and batches are immutable value
// objects and every transform returns a new value. The package is generic
// over the tensor backend; training requires the autodiff decorator so
// gradients can be read off the tape afterwards.
package pinn

import (
	"fmt"

	"github.com/gopinn/gopinn/internal/tensor"
)

// Parameter group names recognized by derivative-key specs.
const (
	GroupNNParams = "nn_params"
	GroupEqParams = "eq_params"
)

// NNParams is one approximator's weight leaves, keyed by layer parameter
// name (e.g. "w0", "b0", "w1", ...).
type NNParams[B tensor.Backend] map[string]*tensor.Tensor[float32, B]

// Clone returns a shallow copy: same leaf tensors under a fresh map.
func (p NNParams[B]) Clone() NNParams[B] {
	out := make(NNParams[B], len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// detach replaces every leaf with a detached view. Detached leaves share
// storage with the originals but are fresh graph nodes, so gradients
// accumulated through them never reach the original headers.
func (p NNParams[B]) detach() NNParams[B] {
	out := make(NNParams[B], len(p))
	for k, v := range p {
		out[k] = v.Detach()
	}
	return out
}

// ParamTree is the global parameter container: approximator weights under
// the nn_params group (one flat set, or one set per equation id for coupled
// systems) and named equation coefficients under eq_params. Exactly one of
// NN and NNByEq is populated.
type ParamTree[B tensor.Backend] struct {
	NN     NNParams[B]
	NNByEq map[string]NNParams[B]
	Eq     map[string]*tensor.Tensor[float32, B]
}

// NNFor resolves the weight set for one equation id. A flat tree serves
// every id; a per-equation tree requires the id to be present.
func (t ParamTree[B]) NNFor(eqID string) (NNParams[B], error) {
	if t.NN != nil {
		return t.NN, nil
	}
	nn, ok := t.NNByEq[eqID]
	if !ok {
		return nil, fmt.Errorf("%w: nn_params has no entry for equation %q", ErrKeyMismatch, eqID)
	}
	return nn, nil
}

// Clone returns a copy with fresh maps but the same leaf tensors.
func (t ParamTree[B]) Clone() ParamTree[B] {
	out := ParamTree[B]{}
	if t.NN != nil {
		out.NN = t.NN.Clone()
	}
	if t.NNByEq != nil {
		out.NNByEq = make(map[string]NNParams[B], len(t.NNByEq))
		for id, p := range t.NNByEq {
			out.NNByEq[id] = p.Clone()
		}
	}
	if t.Eq != nil {
		out.Eq = make(map[string]*tensor.Tensor[float32, B], len(t.Eq))
		for k, v := range t.Eq {
			out.Eq[k] = v
		}
	}
	return out
}

// Merge returns a tree in which the given per-sample equation-parameter
// batch replaces the matching eq_params entries. Keys must already exist
// in eq_params; the receiver is not modified.
func (t ParamTree[B]) Merge(paramBatch map[string]*tensor.Tensor[float32, B]) (ParamTree[B], error) {
	if len(paramBatch) == 0 {
		return t, nil
	}
	out := t.Clone()
	if out.Eq == nil {
		out.Eq = make(map[string]*tensor.Tensor[float32, B], len(paramBatch))
	}
	for k, v := range paramBatch {
		if _, ok := t.Eq[k]; !ok {
			return ParamTree[B]{}, fmt.Errorf("%w: param batch key %q not in eq_params", ErrKeyMismatch, k)
		}
		out.Eq[k] = v
	}
	return out, nil
}

// Leaves returns every tensor leaf of the tree keyed by a qualified path,
// e.g. "nn_params/w0", "nn_params/u/w0", "eq_params/alpha". Iteration
// order of the underlying maps is not fixed; callers needing determinism
// sort the keys.
func (t ParamTree[B]) Leaves() map[string]*tensor.Tensor[float32, B] {
	out := make(map[string]*tensor.Tensor[float32, B])
	for k, v := range t.NN {
		out[GroupNNParams+"/"+k] = v
	}
	for id, p := range t.NNByEq {
		for k, v := range p {
			out[GroupNNParams+"/"+id+"/"+k] = v
		}
	}
	for k, v := range t.Eq {
		out[GroupEqParams+"/"+k] = v
	}
	return out
}
