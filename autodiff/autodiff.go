// Copyright 2026 The gopinn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation by
// wrapping any backend with a gradient tape.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	total, _, _ := loss.Evaluate(tree, batch)
//	grads, _ := autodiff.Backward(total, backend)
package autodiff

import (
	"github.com/gopinn/gopinn/internal/autodiff"
	"github.com/gopinn/gopinn/internal/tensor"
)

// Backend is the autodiff-enabled backend decorator.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New wraps a backend with gradient recording.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for backpropagation.
type GradientTape = autodiff.GradientTape

// BackwardCapable is implemented by backends that expose a tape.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients of t with respect to every recorded
// tensor, keyed by raw tensor identity.
func Backward[T tensor.DType, B tensor.Backend](t *tensor.Tensor[T, B], backend B) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	return autodiff.Backward(t, backend)
}
