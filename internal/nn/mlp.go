// Package nn provides the reference approximator: a pointwise tanh MLP
// whose weights live as leaves of a parameter tree, so loss terms can
// route gradients through them per derivative-key policy.
package nn

import (
	"fmt"
	"math/rand"

	"github.com/gopinn/gopinn/internal/pinn"
	"github.com/gopinn/gopinn/internal/tensor"
)

// MLP is a fully-connected tanh network evaluated one sample at a time.
// It holds no weights itself; Eval reads them from the tree under the
// leaf names produced by Init ("w0", "b0", "w1", ...), resolved through
// the configured equation id for per-equation trees.
type MLP[B tensor.Backend] struct {
	backend B
	sizes   []int
	eqID    string
	slice   pinn.OutputSlice
}

// Option configures an MLP.
type Option[B tensor.Backend] func(*MLP[B])

// WithEquationID routes weight lookup through a per-equation nn_params
// subtree.
func WithEquationID[B tensor.Backend](id string) Option[B] {
	return func(m *MLP[B]) { m.eqID = id }
}

// WithOutputSlice restricts observation comparison to a channel range.
func WithOutputSlice[B tensor.Backend](start, length int) Option[B] {
	return func(m *MLP[B]) { m.slice = pinn.OutputSlice{Start: start, Length: length} }
}

// NewMLP builds an MLP with the given layer widths, input first and
// output last.
func NewMLP[B tensor.Backend](backend B, sizes []int, opts ...Option[B]) (*MLP[B], error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("mlp needs at least input and output sizes, got %v", sizes)
	}
	for _, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("mlp layer sizes must be positive, got %v", sizes)
		}
	}
	m := &MLP[B]{backend: backend, sizes: append([]int(nil), sizes...)}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Init draws Xavier-initialized weights and zero biases as fresh tree
// leaves.
func (m *MLP[B]) Init(rng *rand.Rand) pinn.NNParams[B] {
	params := make(pinn.NNParams[B], 2*(len(m.sizes)-1))
	for l := 0; l < len(m.sizes)-1; l++ {
		in, out := m.sizes[l], m.sizes[l+1]
		params[fmt.Sprintf("w%d", l)] = tensor.Xavier[float32](in, out, tensor.Shape{in, out}, rng, m.backend)
		params[fmt.Sprintf("b%d", l)] = tensor.Zeros[float32](tensor.Shape{1, out}, m.backend)
	}
	return params
}

// Eval runs one forward pass on a single sample. Multiple coordinate
// tensors (e.g. t and x) are concatenated into one input row.
func (m *MLP[B]) Eval(inputs []*tensor.Tensor[float32, B], tree pinn.ParamTree[B]) (*tensor.Tensor[float32, B], error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("mlp: no inputs")
	}
	x := inputs[0]
	if len(inputs) > 1 {
		flat := make([]*tensor.Tensor[float32, B], len(inputs))
		for i, in := range inputs {
			flat[i] = in.Reshape(1, in.NumElements())
		}
		x = tensor.Cat(flat, 1)
	} else {
		x = x.Reshape(1, x.NumElements())
	}
	if got := x.Shape()[1]; got != m.sizes[0] {
		return nil, fmt.Errorf("mlp: input has %d features, want %d", got, m.sizes[0])
	}

	params, err := tree.NNFor(m.eqID)
	if err != nil {
		return nil, err
	}
	for l := 0; l < len(m.sizes)-1; l++ {
		w, ok := params[fmt.Sprintf("w%d", l)]
		if !ok {
			return nil, fmt.Errorf("mlp: missing weight w%d", l)
		}
		b, ok := params[fmt.Sprintf("b%d", l)]
		if !ok {
			return nil, fmt.Errorf("mlp: missing bias b%d", l)
		}
		x = x.MatMul(w).Add(b)
		if l < len(m.sizes)-2 {
			x = x.Tanh()
		}
	}
	return x, nil
}

// Kind reports the pointwise capability.
func (m *MLP[B]) Kind() pinn.Kind { return pinn.Pointwise }

// Slice reports the configured output-channel restriction.
func (m *MLP[B]) Slice() pinn.OutputSlice { return m.slice }
