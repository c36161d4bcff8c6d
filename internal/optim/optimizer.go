// Package optim implements optimization algorithms stepping the leaves
// of a parameter tree from tape gradients.
//
// Example usage:
//
//	optimizer := optim.NewAdam[*autodiff.AutodiffBackend[*cpu.CPUBackend]](optim.AdamConfig{LR: 0.001})
//
//	for iter := range iters {
//	    backend.Tape().Clear()
//	    backend.Tape().StartRecording()
//	    total, _, _ := loss.Evaluate(tree, batch)
//	    grads, _ := autodiff.Backward(total, backend)
//	    optimizer.Step(tree, grads)
//	}
package optim

import (
	"github.com/gopinn/gopinn/internal/pinn"
	"github.com/gopinn/gopinn/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
// Step updates tree leaves in place from the gradient map; leaves
// without an accumulated gradient (detached throughout the evaluation,
// or simply unused) are left untouched.
type Optimizer[B tensor.Backend] interface {
	Step(tree pinn.ParamTree[B], grads map[*tensor.RawTensor]*tensor.RawTensor)

	// LR reports the current learning rate.
	LR() float32
}
