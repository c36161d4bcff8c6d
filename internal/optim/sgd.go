package optim

import (
	"github.com/gopinn/gopinn/internal/pinn"
	"github.com/gopinn/gopinn/internal/tensor"
)

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD[B tensor.Backend] struct {
	lr         float32
	momentum   float32
	velocities map[*tensor.RawTensor][]float32
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD[B tensor.Backend](config SGDConfig) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD[B]{
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*tensor.RawTensor][]float32),
	}
}

// Step updates every tree leaf that accumulated a gradient.
func (s *SGD[B]) Step(tree pinn.ParamTree[B], grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, leaf := range tree.Leaves() {
		raw := leaf.Raw()
		grad, ok := grads[raw]
		if !ok {
			continue
		}
		p := raw.AsFloat32()
		g := grad.AsFloat32()

		if s.momentum == 0 {
			for i := range p {
				p[i] -= s.lr * g[i]
			}
			continue
		}

		v, ok := s.velocities[raw]
		if !ok {
			v = make([]float32, len(p))
			s.velocities[raw] = v
		}
		for i := range p {
			v[i] = s.momentum*v[i] + g[i]
			p[i] -= s.lr * v[i]
		}
	}
}

// LR reports the learning rate.
func (s *SGD[B]) LR() float32 { return s.lr }
