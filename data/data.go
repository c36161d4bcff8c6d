// Copyright 2026 The gopinn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data provides collocation batches and batch generators.
package data

import (
	"math/rand"

	"github.com/gopinn/gopinn/internal/data"
	"github.com/gopinn/gopinn/internal/tensor"
)

// ODEBatch carries a temporal collocation batch and optional batched
// equation parameters.
type ODEBatch[B tensor.Backend] = data.ODEBatch[B]

// PDEStatioBatch carries interior and border collocation points for a
// stationary PDE.
type PDEStatioBatch[B tensor.Backend] = data.PDEStatioBatch[B]

// PDENonStatioBatch adds a temporal batch to the stationary layout.
type PDENonStatioBatch[B tensor.Backend] = data.PDENonStatioBatch[B]

// ObservedBatch pairs observation inputs with measured values.
type ObservedBatch[B tensor.Backend] = data.ObservedBatch[B]

// ODEGenerator samples temporal collocation batches from a time window.
type ODEGenerator[B tensor.Backend] = data.ODEGenerator[B]

// NewODEGenerator builds a generator over [tmin, tmax] with nt sample
// points served in batches of batchSize.
func NewODEGenerator[B tensor.Backend](backend B, tmin, tmax float64, nt, batchSize int, rng *rand.Rand) (*ODEGenerator[B], error) {
	return data.NewODEGenerator(backend, tmin, tmax, nt, batchSize, rng)
}
