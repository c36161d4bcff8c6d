package ops

import (
	"github.com/gopinn/gopinn/internal/tensor"
)

// unaryOp is the common structure of single-input math operations.
// Each variant supplies its own backward rule.
type unaryOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the input tensor [x].
func (op *unaryOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the output tensor.
func (op *unaryOp) Output() *tensor.RawTensor { return op.output }

// ExpOp: y = exp(x); dy/dx = exp(x) = y.
type ExpOp struct{ unaryOp }

// NewExpOp creates a new ExpOp.
func NewExpOp(x, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{unaryOp{input: x, output: output}}
}

// Backward computes grad_input = outputGrad * exp(x).
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}

// LogOp: y = log(x); dy/dx = 1/x.
type LogOp struct{ unaryOp }

// NewLogOp creates a new LogOp.
func NewLogOp(x, output *tensor.RawTensor) *LogOp {
	return &LogOp{unaryOp{input: x, output: output}}
}

// Backward computes grad_input = outputGrad / x.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.input)}
}

// SqrtOp: y = sqrt(x); dy/dx = 1/(2*sqrt(x)) = 1/(2y).
type SqrtOp struct{ unaryOp }

// NewSqrtOp creates a new SqrtOp.
func NewSqrtOp(x, output *tensor.RawTensor) *SqrtOp {
	return &SqrtOp{unaryOp{input: x, output: output}}
}

// Backward computes grad_input = outputGrad / (2 * sqrt(x)).
func (op *SqrtOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, backend.MulScalar(op.output, 2))}
}

// SinOp: y = sin(x); dy/dx = cos(x).
type SinOp struct{ unaryOp }

// NewSinOp creates a new SinOp.
func NewSinOp(x, output *tensor.RawTensor) *SinOp {
	return &SinOp{unaryOp{input: x, output: output}}
}

// Backward computes grad_input = outputGrad * cos(x).
func (op *SinOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Cos(op.input))}
}

// CosOp: y = cos(x); dy/dx = -sin(x).
type CosOp struct{ unaryOp }

// NewCosOp creates a new CosOp.
func NewCosOp(x, output *tensor.RawTensor) *CosOp {
	return &CosOp{unaryOp{input: x, output: output}}
}

// Backward computes grad_input = -outputGrad * sin(x).
func (op *CosOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{neg(backend.Mul(outputGrad, backend.Sin(op.input)), backend)}
}

// TanhOp: y = tanh(x); dy/dx = 1 - tanh²(x) = 1 - y².
type TanhOp struct{ unaryOp }

// NewTanhOp creates a new TanhOp.
func NewTanhOp(x, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{unaryOp{input: x, output: output}}
}

// Backward computes grad_input = outputGrad * (1 - tanh²(x)).
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	oneMinusSq := backend.AddScalar(neg(backend.Mul(op.output, op.output), backend), 1)
	return []*tensor.RawTensor{backend.Mul(outputGrad, oneMinusSq)}
}

// AbsOp: y = |x|; dy/dx = sign(x).
type AbsOp struct{ unaryOp }

// NewAbsOp creates a new AbsOp.
func NewAbsOp(x, output *tensor.RawTensor) *AbsOp {
	return &AbsOp{unaryOp{input: x, output: output}}
}

// Backward computes grad_input = outputGrad * sign(x).
// The subgradient at 0 is taken as 0.
func (op *AbsOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, sign(op.input, backend))}
}

// sign computes the element-wise sign of x (with sign(0) = 0).
func sign(x *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), backend.Device())
	if err != nil {
		panic(err)
	}

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			switch {
			case v > 0:
				dst[i] = 1
			case v < 0:
				dst[i] = -1
			}
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			switch {
			case v > 0:
				dst[i] = 1
			case v < 0:
				dst[i] = -1
			}
		}
	}

	return result
}

// PowOp: y = x^p; dy/dx = p * x^(p-1).
type PowOp struct {
	unaryOp
	p float64
}

// NewPowOp creates a new PowOp.
func NewPowOp(x, output *tensor.RawTensor, p float64) *PowOp {
	return &PowOp{unaryOp: unaryOp{input: x, output: output}, p: p}
}

// Backward computes grad_input = outputGrad * p * x^(p-1).
func (op *PowOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	scaled := backend.MulScalar(backend.Pow(op.input, op.p-1), op.p)
	return []*tensor.RawTensor{backend.Mul(outputGrad, scaled)}
}
