// Copyright 2026 The gopinn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package pinn is the public loss-composition API for physics-informed
// neural networks: constraint terms, single-equation and coupled-system
// losses, derivative selection and batched evaluation.
//
// Example:
//
//	loss, err := pinn.NewEquationLoss(pinn.EquationConfig[B]{
//	    Approximator: model,
//	    Dynamic:      decayResidual,
//	    Initial:      &pinn.InitialCondition[B]{T0: 0, U0: u0},
//	})
//	total, breakdown, err := loss.Evaluate(tree, batch)
package pinn

import (
	"github.com/gopinn/gopinn/internal/pinn"
	"github.com/gopinn/gopinn/internal/tensor"
)

// Parameter group names for derivative-key specs.
const (
	GroupNNParams = pinn.GroupNNParams
	GroupEqParams = pinn.GroupEqParams
)

// Term names appearing in loss breakdowns and weight maps.
const (
	TermDynamic      = pinn.TermDynamic
	TermInitial      = pinn.TermInitial
	TermObservations = pinn.TermObservations
	TermBoundary     = pinn.TermBoundary
	TermNorm         = pinn.TermNorm
	TermSobolev      = pinn.TermSobolev
)

// Sentinel errors classifying construction and evaluation failures.
var (
	ErrKeyMismatch         = pinn.ErrKeyMismatch
	ErrShapeMismatch       = pinn.ErrShapeMismatch
	ErrNotImplemented      = pinn.ErrNotImplemented
	ErrBadWeight           = pinn.ErrBadWeight
	ErrBadFacets           = pinn.ErrBadFacets
	ErrBadInitialCondition = pinn.ErrBadInitialCondition
)

// Parameter containers.
type (
	NNParams[B tensor.Backend]  = pinn.NNParams[B]
	ParamTree[B tensor.Backend] = pinn.ParamTree[B]
)

// DerivativeKeys maps term names to differentiable parameter groups.
type DerivativeKeys = pinn.DerivativeKeys

// SelectDerivatives detaches all parameter groups not whitelisted for a
// term.
func SelectDerivatives[B tensor.Backend](t ParamTree[B], term string, keys DerivativeKeys) ParamTree[B] {
	return pinn.SelectDerivatives(t, term, keys)
}

// Approximator contracts and capability tags.
type (
	Approximator[B tensor.Backend] = pinn.Approximator[B]
	OutputSlice                    = pinn.OutputSlice
	Kind                           = pinn.Kind
)

// Approximator capability tags.
const (
	Pointwise  = pinn.Pointwise
	GridNative = pinn.GridNative
)

// Differential operator contracts.
type (
	DynamicLoss[B tensor.Backend]       = pinn.DynamicLoss[B]
	DynamicFunc[B tensor.Backend]       = pinn.DynamicFunc[B]
	HorizonScaled[B tensor.Backend]     = pinn.HorizonScaled[B]
	SystemDynamicLoss[B tensor.Backend] = pinn.SystemDynamicLoss[B]
	SystemDynamicFunc[B tensor.Backend] = pinn.SystemDynamicFunc[B]
)

// Weights.
type (
	TermWeight    = pinn.TermWeight
	Weights       = pinn.Weights
	SystemWeight  = pinn.SystemWeight
	SystemWeights = pinn.SystemWeights
)

// Scalar builds a scalar term weight.
func Scalar(v float32) TermWeight { return pinn.Scalar(v) }

// PerChannel builds a per-output-channel term weight.
func PerChannel(v []float32) TermWeight { return pinn.PerChannel(v) }

// UniformWeight builds a broadcast scalar system weight.
func UniformWeight(v float32) SystemWeight { return pinn.UniformWeight(v) }

// KeyedWeight builds a per-equation system weight.
func KeyedWeight(m map[string]float32) SystemWeight { return pinn.KeyedWeight(m) }

// Constraint data.
type (
	InitialCondition[B tensor.Backend]        = pinn.InitialCondition[B]
	SpatialInitialCondition[B tensor.Backend] = pinn.SpatialInitialCondition[B]
	BoundaryCondition[B tensor.Backend]       = pinn.BoundaryCondition[B]
	BoundaryConditions[B tensor.Backend]      = pinn.BoundaryConditions[B]
	Normalization[B tensor.Backend]           = pinn.Normalization[B]
	SobolevRegularizer[B tensor.Backend]      = pinn.SobolevRegularizer[B]
	BoundaryKind                              = pinn.BoundaryKind
)

// Boundary condition kinds.
const (
	Dirichlet = pinn.Dirichlet
	Neumann   = pinn.Neumann
)

// Loss objects.
type (
	EquationConfig[B tensor.Backend]     = pinn.EquationConfig[B]
	EquationLoss[B tensor.Backend]       = pinn.EquationLoss[B]
	SystemConfig[B tensor.Backend]       = pinn.SystemConfig[B]
	SystemLoss[B tensor.Backend]         = pinn.SystemLoss[B]
	PDEStatioConfig[B tensor.Backend]    = pinn.PDEStatioConfig[B]
	PDEStatioLoss[B tensor.Backend]      = pinn.PDEStatioLoss[B]
	PDENonStatioConfig[B tensor.Backend] = pinn.PDENonStatioConfig[B]
	PDENonStatioLoss[B tensor.Backend]   = pinn.PDENonStatioLoss[B]
)

// NewEquationLoss builds a validated single-equation loss.
func NewEquationLoss[B tensor.Backend](cfg EquationConfig[B]) (*EquationLoss[B], error) {
	return pinn.NewEquationLoss(cfg)
}

// NewSystemLoss builds a validated coupled-system loss.
func NewSystemLoss[B tensor.Backend](cfg SystemConfig[B]) (*SystemLoss[B], error) {
	return pinn.NewSystemLoss(cfg)
}

// NewPDEStatioLoss builds a validated stationary-PDE loss.
func NewPDEStatioLoss[B tensor.Backend](cfg PDEStatioConfig[B]) (*PDEStatioLoss[B], error) {
	return pinn.NewPDEStatioLoss(cfg)
}

// NewPDENonStatioLoss builds a validated time-dependent PDE loss.
func NewPDENonStatioLoss[B tensor.Backend](cfg PDENonStatioConfig[B]) (*PDENonStatioLoss[B], error) {
	return pinn.NewPDENonStatioLoss(cfg)
}
