// Copyright 2026 The gopinn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor API: shapes, data types, the
// generic Tensor and the Backend interface the compute backends
// implement.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Linspace[float32](0, 1, 100, backend)
//	y := x.Sin().MulScalar(2)
package tensor

import (
	"math/rand"

	"github.com/gopinn/gopinn/internal/tensor"
)

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// DataType identifies the element type of a raw tensor.
type DataType = tensor.DataType

// Supported element types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
)

// Device identifies where tensor data lives.
type Device = tensor.Device

// Available devices.
const (
	CPU = tensor.CPU
	GPU = tensor.GPU
)

// DType constrains the element types tensors support.
type DType = tensor.DType

// Backend is the compute interface implemented by internal/backend/cpu
// and decorated by the autodiff package.
type Backend = tensor.Backend

// RawTensor is the untyped tensor representation shared by backends.
type RawTensor = tensor.RawTensor

// Tensor is a typed tensor bound to a backend.
type Tensor[T tensor.DType, B tensor.Backend] = tensor.Tensor[T, B]

// New wraps a raw tensor.
func New[T tensor.DType, B tensor.Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T](raw, b)
}

// FromSlice builds a tensor from a flat slice.
func FromSlice[T tensor.DType, B tensor.Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice(data, shape, b)
}

// Zeros returns a zero-filled tensor.
func Zeros[T tensor.DType, B tensor.Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T](shape, b)
}

// Ones returns a one-filled tensor.
func Ones[T tensor.DType, B tensor.Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T](shape, b)
}

// Full returns a tensor filled with value.
func Full[T tensor.DType, B tensor.Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full(shape, value, b)
}

// Scalar returns a single-element tensor.
func Scalar[T tensor.DType, B tensor.Backend](value T, b B) *Tensor[T, B] {
	return tensor.Scalar(value, b)
}

// Linspace returns n evenly spaced values over [lo, hi].
func Linspace[T tensor.DType, B tensor.Backend](lo, hi T, n int, b B) *Tensor[T, B] {
	return tensor.Linspace(lo, hi, n, b)
}

// Randn returns a tensor of standard normal samples.
func Randn[T tensor.DType, B tensor.Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	return tensor.Randn[T](shape, rng, b)
}

// Cat concatenates tensors along a dimension.
func Cat[T tensor.DType, B tensor.Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	return tensor.Cat(tensors, dim)
}

// BroadcastShapes computes the NumPy-style broadcast of two shapes.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
