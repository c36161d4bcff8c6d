package pinn

import "github.com/gopinn/gopinn/internal/tensor"

// DerivativeKeys maps a term name to the parameter groups that receive
// gradient signal when that term is evaluated. Groups not listed are
// treated as constants for the evaluation. A missing term falls back to
// DefaultDerivativeKeys.
type DerivativeKeys map[string][]string

// DefaultDerivativeKeys differentiates through the approximator weights
// only.
var DefaultDerivativeKeys = []string{GroupNNParams}

// UniformDerivativeKeys applies the same group list to every given term.
func UniformDerivativeKeys(groups []string, terms ...string) DerivativeKeys {
	out := make(DerivativeKeys, len(terms))
	for _, term := range terms {
		out[term] = groups
	}
	return out
}

// For returns the group whitelist for a term, falling back to the default.
func (k DerivativeKeys) For(term string) []string {
	if groups, ok := k[term]; ok {
		return groups
	}
	return DefaultDerivativeKeys
}

// SelectDerivatives returns a tree where the groups whitelisted for term
// keep their original leaves and every other group is replaced by detached
// views. Detached leaves share numeric storage with the source but have
// fresh headers, so gradients computed through the returned tree never
// accumulate on the source leaves of non-whitelisted groups.
//
// The transform is pure: the source tree is never modified, and selections
// for different terms against the same source do not interfere.
func SelectDerivatives[B tensor.Backend](t ParamTree[B], term string, keys DerivativeKeys) ParamTree[B] {
	groups := keys.For(term)
	keepNN, keepEq := false, false
	for _, g := range groups {
		switch g {
		case GroupNNParams:
			keepNN = true
		case GroupEqParams:
			keepEq = true
		}
	}

	out := ParamTree[B]{}
	if t.NN != nil {
		if keepNN {
			out.NN = t.NN.Clone()
		} else {
			out.NN = t.NN.detach()
		}
	}
	if t.NNByEq != nil {
		out.NNByEq = make(map[string]NNParams[B], len(t.NNByEq))
		for id, p := range t.NNByEq {
			if keepNN {
				out.NNByEq[id] = p.Clone()
			} else {
				out.NNByEq[id] = p.detach()
			}
		}
	}
	if t.Eq != nil {
		out.Eq = make(map[string]*tensor.Tensor[float32, B], len(t.Eq))
		for k, v := range t.Eq {
			if keepEq {
				out.Eq[k] = v
			} else {
				out.Eq[k] = v.Detach()
			}
		}
	}
	return out
}
