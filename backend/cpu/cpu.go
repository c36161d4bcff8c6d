// Copyright 2026 The gopinn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure-Go CPU compute backend.
package cpu

import "github.com/gopinn/gopinn/internal/backend/cpu"

// Backend is the CPU implementation of tensor.Backend.
type Backend = cpu.CPUBackend

// New creates a CPU backend.
func New() *Backend {
	return cpu.New()
}
