package optim

import (
	"math"

	"github.com/gopinn/gopinn/internal/pinn"
	"github.com/gopinn/gopinn/internal/tensor"
)

// Adam implements the Adam optimizer (Kingma & Ba, 2015).
//
// Update rule:
//
//	m = beta1 * m + (1 - beta1) * gradient
//	v = beta2 * v + (1 - beta2) * gradient²
//	m_hat = m / (1 - beta1^t)
//	v_hat = v / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
type Adam[B tensor.Backend] struct {
	lr    float32
	beta1 float32
	beta2 float32
	eps   float32
	step  int

	m map[*tensor.RawTensor][]float32
	v map[*tensor.RawTensor][]float32
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR    float32 // Learning rate (default: 0.001)
	Beta1 float32 // First-moment decay (default: 0.9)
	Beta2 float32 // Second-moment decay (default: 0.999)
	Eps   float32 // Numerical stability term (default: 1e-8)
}

// NewAdam creates a new Adam optimizer.
func NewAdam[B tensor.Backend](config AdamConfig) *Adam[B] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Beta1 == 0 {
		config.Beta1 = 0.9
	}
	if config.Beta2 == 0 {
		config.Beta2 = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam[B]{
		lr:    config.LR,
		beta1: config.Beta1,
		beta2: config.Beta2,
		eps:   config.Eps,
		m:     make(map[*tensor.RawTensor][]float32),
		v:     make(map[*tensor.RawTensor][]float32),
	}
}

// Step updates every tree leaf that accumulated a gradient.
func (a *Adam[B]) Step(tree pinn.ParamTree[B], grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.step++
	bc1 := 1 - float32(math.Pow(float64(a.beta1), float64(a.step)))
	bc2 := 1 - float32(math.Pow(float64(a.beta2), float64(a.step)))

	for _, leaf := range tree.Leaves() {
		raw := leaf.Raw()
		grad, ok := grads[raw]
		if !ok {
			continue
		}
		p := raw.AsFloat32()
		g := grad.AsFloat32()

		m, ok := a.m[raw]
		if !ok {
			m = make([]float32, len(p))
			a.m[raw] = m
		}
		v, ok := a.v[raw]
		if !ok {
			v = make([]float32, len(p))
			a.v[raw] = v
		}

		for i := range p {
			m[i] = a.beta1*m[i] + (1-a.beta1)*g[i]
			v[i] = a.beta2*v[i] + (1-a.beta2)*g[i]*g[i]
			mHat := m[i] / bc1
			vHat := v[i] / bc2
			p[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
}

// LR reports the learning rate.
func (a *Adam[B]) LR() float32 { return a.lr }
