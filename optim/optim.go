// Copyright 2026 The gopinn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides gradient-descent optimizers for parameter trees.
package optim

import (
	"github.com/gopinn/gopinn/internal/optim"
	"github.com/gopinn/gopinn/internal/tensor"
)

// Optimizer applies gradients from a backward pass to a parameter tree.
type Optimizer[B tensor.Backend] = optim.Optimizer[B]

// SGD is stochastic gradient descent with optional momentum.
type SGD[B tensor.Backend] = optim.SGD[B]

// SGDConfig configures an SGD optimizer.
type SGDConfig = optim.SGDConfig

// Adam is the Adam optimizer with bias correction.
type Adam[B tensor.Backend] = optim.Adam[B]

// AdamConfig configures an Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewSGD builds an SGD optimizer. Zero config fields take defaults.
func NewSGD[B tensor.Backend](cfg SGDConfig) *SGD[B] {
	return optim.NewSGD[B](cfg)
}

// NewAdam builds an Adam optimizer. Zero config fields take defaults.
func NewAdam[B tensor.Backend](cfg AdamConfig) *Adam[B] {
	return optim.NewAdam[B](cfg)
}
