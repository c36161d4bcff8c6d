package pinn

import (
	"fmt"

	"github.com/gopinn/gopinn/internal/tensor"
)

// Facet names in evaluation order. A 1-D domain has the x facets only; a
// 2-D domain has all four.
var (
	facets1D = []string{"xmin", "xmax"}
	facets2D = []string{"xmin", "xmax", "ymin", "ymax"}
)

// BoundaryKind names the condition type applied on a facet. Only
// Dirichlet conditions are implemented; other kinds fail fast.
type BoundaryKind string

const (
	Dirichlet BoundaryKind = "dirichlet"
	Neumann   BoundaryKind = "neumann"
)

// BoundaryCondition is one facet's condition: the target the solution
// must match at boundary points.
type BoundaryCondition[B tensor.Backend] struct {
	Kind BoundaryKind

	// Value returns the prescribed boundary value at a single boundary
	// point of shape (1, d).
	Value func(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error)
}

// BoundaryConditions assigns conditions to facets: either one condition
// applied on every facet, or a per-facet map covering exactly the
// domain's facet names.
type BoundaryConditions[B tensor.Backend] struct {
	All      *BoundaryCondition[B]
	PerFacet map[string]*BoundaryCondition[B]
}

// facetNames resolves the facet list for a boundary batch of shape
// (nb, d, facets).
func facetNames(facetCount int) ([]string, error) {
	switch facetCount {
	case 2:
		return facets1D, nil
	case 4:
		return facets2D, nil
	default:
		return nil, fmt.Errorf("%w: %d facets (want 2 for 1-D or 4 for 2-D)", ErrBadFacets, facetCount)
	}
}

// conditionFor resolves the condition applied on one facet.
func (bc BoundaryConditions[B]) conditionFor(facet string, names []string) (*BoundaryCondition[B], error) {
	if bc.All != nil {
		return bc.All, nil
	}
	if len(bc.PerFacet) != len(names) {
		return nil, fmt.Errorf("%w: boundary conditions cover %v, domain facets are %v", ErrKeyMismatch, sortedKeys(bc.PerFacet), names)
	}
	cond, ok := bc.PerFacet[facet]
	if !ok {
		return nil, fmt.Errorf("%w: no boundary condition for facet %q", ErrKeyMismatch, facet)
	}
	return cond, nil
}

// boundaryTerm accumulates the mean squared boundary deviation across
// facets: for each facet, the approximator is evaluated at every boundary
// point and compared against the prescribed value.
func boundaryTerm[B tensor.Backend](
	bc *BoundaryConditions[B],
	u Approximator[B],
	tree ParamTree[B],
	border *tensor.Tensor[float32, B],
	timeBatch *tensor.Tensor[float32, B],
	w TermWeight,
	backend B,
) (*tensor.Tensor[float32, B], error) {
	if bc == nil || border == nil || w.IsZero() {
		return zeroTerm(backend), nil
	}
	if u.Kind() != Pointwise {
		return nil, fmt.Errorf("%w: boundary loss for %s approximators", ErrNotImplemented, u.Kind())
	}
	shape := border.Shape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("%w: boundary batch has shape %v, want (points, dim, facets)", ErrShapeMismatch, shape)
	}
	names, err := facetNames(shape[2])
	if err != nil {
		return nil, err
	}

	total := zeroTerm(backend)
	for f, name := range names {
		cond, err := bc.conditionFor(name, names)
		if err != nil {
			return nil, err
		}
		if cond.Kind != Dirichlet {
			return nil, fmt.Errorf("%w: %s boundary conditions", ErrNotImplemented, cond.Kind)
		}

		points := border.Narrow(2, f, 1).Reshape(shape[0], shape[1])
		inputs := []*tensor.Tensor[float32, B]{points}
		if timeBatch != nil {
			inputs = []*tensor.Tensor[float32, B]{timeBatch, points}
		}
		res, err := Apply(func(rows []*tensor.Tensor[float32, B], t ParamTree[B]) (*tensor.Tensor[float32, B], error) {
			pred, err := u.Eval(rows, t)
			if err != nil {
				return nil, err
			}
			want, err := cond.Value(rows[len(rows)-1])
			if err != nil {
				return nil, err
			}
			return pred.Sub(want), nil
		}, inputs, tree, AxisSpec{Inputs: InputAxes(len(inputs))}, Pointwise)
		if err != nil {
			return nil, fmt.Errorf("boundary facet %s: %w", name, err)
		}
		mse, err := weightedMSE(res, w)
		if err != nil {
			return nil, err
		}
		total = total.Add(mse)
	}
	return total.DivScalar(float64(len(names))), nil
}
