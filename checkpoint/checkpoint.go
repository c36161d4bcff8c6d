// Copyright 2026 The gopinn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package checkpoint persists parameter trees to disk.
package checkpoint

import (
	"github.com/gopinn/gopinn/internal/checkpoint"
	"github.com/gopinn/gopinn/internal/pinn"
	"github.com/gopinn/gopinn/internal/tensor"
)

// Header is the JSON header of a checkpoint file.
type Header = checkpoint.Header

// TensorMeta describes one tensor's placement in the data section.
type TensorMeta = checkpoint.TensorMeta

// Save writes a parameter tree to path with free-form metadata.
func Save[B tensor.Backend](path string, tree pinn.ParamTree[B], meta map[string]string) error {
	return checkpoint.Save(path, tree, meta)
}

// Load reads a checkpoint back into a parameter tree.
func Load[B tensor.Backend](path string, backend B) (pinn.ParamTree[B], map[string]string, error) {
	return checkpoint.Load(path, backend)
}
