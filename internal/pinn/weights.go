package pinn

import "fmt"

// Term names appearing in loss breakdowns and weight maps.
const (
	TermDynamic      = "dyn_loss"
	TermInitial      = "initial_condition"
	TermObservations = "observations"
	TermBoundary     = "boundary_loss"
	TermNorm         = "norm_loss"
	TermSobolev      = "sobolev_reg"
)

// TermWeight weights one term's squared residual before reduction: either
// a scalar, or a per-output-channel vector multiplied into the squared
// residual channel-wise. Exactly one of the two forms is active; an empty
// PerChannel means the scalar form.
type TermWeight struct {
	Value      float32
	PerChannel []float32
}

// Scalar builds a scalar term weight.
func Scalar(v float32) TermWeight { return TermWeight{Value: v} }

// PerChannel builds a channel-vector term weight.
func PerChannel(v []float32) TermWeight { return TermWeight{PerChannel: v} }

// IsZero reports whether the weight contributes nothing.
func (w TermWeight) IsZero() bool {
	if len(w.PerChannel) == 0 {
		return w.Value == 0
	}
	for _, c := range w.PerChannel {
		if c != 0 {
			return false
		}
	}
	return true
}

func (w TermWeight) validate(term string) error {
	if len(w.PerChannel) == 0 {
		if w.Value < 0 {
			return fmt.Errorf("%w: %s weight %v is negative", ErrBadWeight, term, w.Value)
		}
		return nil
	}
	for i, c := range w.PerChannel {
		if c < 0 {
			return fmt.Errorf("%w: %s channel %d weight %v is negative", ErrBadWeight, term, i, c)
		}
	}
	return nil
}

// Weights maps term name to its weight for a single-equation loss.
// Construct through NewWeights so validation happens once, up front.
type Weights map[string]TermWeight

// NewWeights validates the given weights and fills missing recognized
// terms with weight 1. Unknown term names and negative weights are
// rejected.
func NewWeights(w map[string]TermWeight, terms ...string) (Weights, error) {
	if len(terms) == 0 {
		terms = []string{TermDynamic, TermInitial, TermObservations}
	}
	recognized := make(map[string]bool, len(terms))
	for _, t := range terms {
		recognized[t] = true
	}
	out := make(Weights, len(terms))
	for term, weight := range w {
		if !recognized[term] {
			return nil, fmt.Errorf("%w: unknown term %q", ErrBadWeight, term)
		}
		if err := weight.validate(term); err != nil {
			return nil, err
		}
		out[term] = weight
	}
	for _, term := range terms {
		if _, ok := out[term]; !ok {
			out[term] = Scalar(1)
		}
	}
	return out, nil
}

// withZero returns a copy with the given terms forced to weight 0. Used
// when a term's supporting data is absent: a spuriously-zero residual must
// never be rewarded.
func (w Weights) withZero(terms ...string) Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	for _, term := range terms {
		out[term] = Scalar(0)
	}
	return out
}

// SystemWeight is one term's weight for a coupled system: either one
// scalar broadcast over every equation, or a per-equation-key map whose
// key set must equal the dynamics keys (for dyn_loss) or the solution
// keys (every other term). Vector-valued weights are not accepted at the
// system level.
type SystemWeight struct {
	Uniform *float32
	PerKey  map[string]float32
}

// UniformWeight builds a broadcast scalar system weight.
func UniformWeight(v float32) SystemWeight { return SystemWeight{Uniform: &v} }

// KeyedWeight builds a per-equation system weight.
func KeyedWeight(m map[string]float32) SystemWeight { return SystemWeight{PerKey: m} }

// For resolves the weight for one equation key.
func (w SystemWeight) For(key string) float32 {
	if w.Uniform != nil {
		return *w.Uniform
	}
	return w.PerKey[key]
}

// SystemWeights maps term name to a SystemWeight. Construct through
// NewSystemWeights.
type SystemWeights map[string]SystemWeight

// NewSystemWeights validates system-level weights against the dynamics
// and solution key sets. Missing terms default to a uniform weight 1.
func NewSystemWeights(w map[string]SystemWeight, dynKeys, solutionKeys map[string]bool) (SystemWeights, error) {
	recognized := map[string]bool{
		TermDynamic:      true,
		TermInitial:      true,
		TermObservations: true,
	}
	out := make(SystemWeights, len(recognized))
	for term, weight := range w {
		if !recognized[term] {
			return nil, fmt.Errorf("%w: unknown term %q", ErrBadWeight, term)
		}
		expected := solutionKeys
		if term == TermDynamic {
			expected = dynKeys
		}
		if err := validateSystemWeight(term, weight, expected); err != nil {
			return nil, err
		}
		out[term] = weight
	}
	for term := range recognized {
		if _, ok := out[term]; !ok {
			out[term] = UniformWeight(1)
		}
	}
	return out, nil
}

func validateSystemWeight(term string, w SystemWeight, expectedKeys map[string]bool) error {
	switch {
	case w.Uniform != nil && w.PerKey != nil:
		return fmt.Errorf("%w: %s has both uniform and per-key forms", ErrBadWeight, term)
	case w.Uniform != nil:
		if *w.Uniform < 0 {
			return fmt.Errorf("%w: %s weight %v is negative", ErrBadWeight, term, *w.Uniform)
		}
		return nil
	case w.PerKey != nil:
		if len(w.PerKey) != len(expectedKeys) {
			return fmt.Errorf("%w: %s weight keys %v, want %v", ErrKeyMismatch, term, sortedKeys(w.PerKey), sortedKeys(expectedKeys))
		}
		for k, v := range w.PerKey {
			if !expectedKeys[k] {
				return fmt.Errorf("%w: %s weight keys %v, want %v", ErrKeyMismatch, term, sortedKeys(w.PerKey), sortedKeys(expectedKeys))
			}
			if v < 0 {
				return fmt.Errorf("%w: %s weight for %q is negative", ErrBadWeight, term, k)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s weight has neither uniform nor per-key form", ErrBadWeight, term)
	}
}
