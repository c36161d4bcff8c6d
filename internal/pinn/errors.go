package pinn

import "errors"

// Sentinel errors for the loss core. Constructors and Evaluate wrap these
// with fmt.Errorf("%w: ...") so callers can classify failures with
// errors.Is while still getting a descriptive message.
var (
	// ErrKeyMismatch reports per-equation dictionaries whose key sets
	// disagree with the approximator dictionary, or per-key weights whose
	// keys do not exactly match the expected set.
	ErrKeyMismatch = errors.New("key set mismatch")

	// ErrShapeMismatch reports reference values whose shape cannot be
	// reconciled with the evaluated shape, and mapped batch axes with
	// unequal lengths.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrNotImplemented reports a term requested against an approximator
	// kind or condition kind that does not support it.
	ErrNotImplemented = errors.New("not implemented")

	// ErrBadWeight reports negative, vector-valued-where-scalar-required,
	// or mismatched-key loss weights.
	ErrBadWeight = errors.New("invalid loss weight")

	// ErrBadFacets reports a boundary batch whose trailing facet dimension
	// is neither 2 (1-D domain) nor 4 (2-D domain).
	ErrBadFacets = errors.New("unsupported boundary facet count")

	// ErrBadInitialCondition reports a malformed initial condition pair.
	ErrBadInitialCondition = errors.New("invalid initial condition")
)
