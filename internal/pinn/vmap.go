package pinn

import (
	"fmt"

	"github.com/gopinn/gopinn/internal/tensor"
)

// NoMap marks an argument or parameter leaf as broadcast: the same value
// is used for every mapped sample.
const NoMap = -1

// AxisSpec declares, per positional input and per eq-param leaf, which
// axis is mapped over. Only leading-axis mapping (axis 0) is supported;
// everything else is NoMap. Inputs and eq-params sharing the mapped axis
// are zipped: sample i pairs row i of every mapped input with row i of
// every mapped parameter, one consistent axis convention rather than
// independent maps over each argument.
type AxisSpec struct {
	Inputs   []int
	EqParams map[string]int
}

// InputAxes builds the Inputs slice with every position mapped on the
// leading axis.
func InputAxes(n int) []int {
	axes := make([]int, n)
	return axes
}

// ParamAxes marks the given eq-param keys as mapped on the leading axis.
// It is derived from the presence of a per-sample parameter batch.
func ParamAxes(batchedKeys []string) map[string]int {
	if len(batchedKeys) == 0 {
		return nil
	}
	out := make(map[string]int, len(batchedKeys))
	for _, k := range batchedKeys {
		out[k] = 0
	}
	return out
}

// BatchedFunc is the shape of functions Apply vectorizes: coordinates in,
// residual (or prediction) out, under a parameter tree.
type BatchedFunc[B tensor.Backend] func(inputs []*tensor.Tensor[float32, B], tree ParamTree[B]) (*tensor.Tensor[float32, B], error)

// Apply evaluates fn over a batch.
//
// Pointwise kind: fn is called once per sample with row-sliced inputs and
// a parameter tree whose mapped eq-param leaves are row-sliced to the same
// index; per-sample outputs are stacked along a new leading axis. Row
// slicing goes through the backend so gradients reach batched parameter
// tensors. All mapped lengths must agree.
//
// GridNative kind: fn already vectorizes internally and is called once
// with the whole batch.
func Apply[B tensor.Backend](fn BatchedFunc[B], inputs []*tensor.Tensor[float32, B], tree ParamTree[B], axes AxisSpec, kind Kind) (*tensor.Tensor[float32, B], error) {
	if kind == GridNative {
		return fn(inputs, tree)
	}
	if len(axes.Inputs) != len(inputs) {
		return nil, fmt.Errorf("%w: %d axis entries for %d inputs", ErrShapeMismatch, len(axes.Inputs), len(inputs))
	}

	n, err := mappedLength(inputs, tree, axes)
	if err != nil {
		return nil, err
	}

	rows := make([]*tensor.Tensor[float32, B], len(inputs))
	outputs := make([]*tensor.Tensor[float32, B], 0, n)
	for i := 0; i < n; i++ {
		for j, in := range inputs {
			if axes.Inputs[j] == NoMap {
				rows[j] = in
			} else {
				rows[j] = in.Narrow(0, i, 1)
			}
		}
		sampleTree := sliceTree(tree, axes.EqParams, i)

		out, err := fn(rows, sampleTree)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		outputs = append(outputs, out.Reshape(1, out.NumElements()))
	}
	if len(outputs) == 1 {
		return outputs[0], nil
	}
	return tensor.Cat(outputs, 0), nil
}

// mappedLength finds the common leading length of every mapped input and
// eq-param leaf, erroring on disagreement.
func mappedLength[B tensor.Backend](inputs []*tensor.Tensor[float32, B], tree ParamTree[B], axes AxisSpec) (int, error) {
	n := -1
	check := func(what string, length int) error {
		if n == -1 {
			n = length
			return nil
		}
		if length != n {
			return fmt.Errorf("%w: mapped axis of %s has length %d, want %d", ErrShapeMismatch, what, length, n)
		}
		return nil
	}

	for j, in := range inputs {
		if axes.Inputs[j] == NoMap {
			continue
		}
		if err := check(fmt.Sprintf("input %d", j), in.Shape()[0]); err != nil {
			return 0, err
		}
	}
	for _, k := range sortedKeys(axes.EqParams) {
		if axes.EqParams[k] == NoMap {
			continue
		}
		leaf, ok := tree.Eq[k]
		if !ok {
			return 0, fmt.Errorf("%w: mapped eq-param %q not in tree", ErrKeyMismatch, k)
		}
		if err := check("eq_params/"+k, leaf.Shape()[0]); err != nil {
			return 0, err
		}
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: no mapped axis with positive length", ErrShapeMismatch)
	}
	return n, nil
}

// sliceTree returns a tree view where mapped eq-param leaves are narrowed
// to sample i. Unmapped leaves and nn_params pass through unchanged.
func sliceTree[B tensor.Backend](tree ParamTree[B], eqAxes map[string]int, i int) ParamTree[B] {
	if len(eqAxes) == 0 {
		return tree
	}
	out := tree.Clone()
	for k, axis := range eqAxes {
		if axis == NoMap {
			continue
		}
		if leaf, ok := out.Eq[k]; ok {
			out.Eq[k] = leaf.Narrow(0, i, 1)
		}
	}
	return out
}
