// Copyright 2026 The gopinn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the reference pointwise MLP approximator.
package nn

import (
	"github.com/gopinn/gopinn/internal/nn"
	"github.com/gopinn/gopinn/internal/tensor"
)

// MLP is a fully-connected tanh network reading its weights from a
// parameter tree.
type MLP[B tensor.Backend] = nn.MLP[B]

// Option configures an MLP.
type Option[B tensor.Backend] = nn.Option[B]

// NewMLP builds an MLP with the given layer widths.
func NewMLP[B tensor.Backend](backend B, sizes []int, opts ...Option[B]) (*MLP[B], error) {
	return nn.NewMLP(backend, sizes, opts...)
}

// WithEquationID routes weight lookup through a per-equation subtree.
func WithEquationID[B tensor.Backend](id string) Option[B] {
	return nn.WithEquationID[B](id)
}

// WithOutputSlice restricts observation comparison to a channel range.
func WithOutputSlice[B tensor.Backend](start, length int) Option[B] {
	return nn.WithOutputSlice[B](start, length)
}
