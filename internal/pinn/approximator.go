package pinn

import "github.com/gopinn/gopinn/internal/tensor"

// Kind is the capability tag declaring how an approximator (and its
// matching differential operators) consume batches. It drives the choice
// of vectorization strategy; nothing in the engine inspects concrete
// types at runtime.
type Kind int

const (
	// Pointwise approximators accept one flattened sample per call; the
	// engine maps them across the batch axis.
	Pointwise Kind = iota
	// GridNative approximators accept whole batches or grids and
	// vectorize internally; the engine calls them once. Terms that do not
	// support this kind fail with ErrNotImplemented.
	GridNative
)

func (k Kind) String() string {
	switch k {
	case Pointwise:
		return "pointwise"
	case GridNative:
		return "grid-native"
	default:
		return "unknown"
	}
}

// OutputSlice restricts a multi-output approximator to a channel range for
// observation comparison. A zero Length means the full output.
type OutputSlice struct {
	Start  int
	Length int
}

// Approximator is the solution ansatz u(x; θ). Implementations declare
// their batching capability and, for multi-output networks, the output
// channels observations compare against. Eval never mutates the tree.
type Approximator[B tensor.Backend] interface {
	// Eval applies the approximator to the given coordinates (one tensor
	// per coordinate role, e.g. [t] for an ODE, [t, x] for a
	// time-dependent PDE) under the given parameters.
	Eval(inputs []*tensor.Tensor[float32, B], tree ParamTree[B]) (*tensor.Tensor[float32, B], error)

	// Kind reports the batching capability.
	Kind() Kind

	// Slice reports the output-channel restriction for observation loss.
	Slice() OutputSlice
}
