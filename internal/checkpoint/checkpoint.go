// Package checkpoint saves and loads parameter trees in a compact
// binary format.
//
//	Format Structure:
//	  [4 bytes: Magic "GPNN"]
//	  [4 bytes: Version (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON metadata]
//	  [Tensor data: raw bytes, 64-byte aligned]
//
// Leaves are keyed the way ParamTree.Leaves keys them, so a loaded file
// reconstructs the full tree including per-equation subtrees.
package checkpoint

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gopinn/gopinn/internal/pinn"
	"github.com/gopinn/gopinn/internal/tensor"
)

const (
	magicBytes      = "GPNN"
	formatVersion   = 1
	headerAlignment = 64
)

// Header is the JSON header of a checkpoint file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TensorMeta describes one tensor's placement in the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}

// Save writes a parameter tree to path. Metadata is free-form and
// round-trips through Load.
func Save[B tensor.Backend](path string, tree pinn.ParamTree[B], meta map[string]string) error {
	leaves := tree.Leaves()
	names := make([]string, 0, len(leaves))
	for name := range leaves {
		names = append(names, name)
	}
	sort.Strings(names)

	header := Header{
		FormatVersion: formatVersion,
		CreatedAt:     time.Now().UTC(),
		Metadata:      meta,
		Tensors:       make([]TensorMeta, 0, len(names)),
	}

	var offset int64
	for _, name := range names {
		raw := leaves[name].Raw()
		size := int64(raw.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  raw.DType().String(),
			Shape:  []int(raw.Shape()),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(magicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint32(formatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	pos := int64(4+4+8) + int64(len(headerJSON))
	if padding := (headerAlignment - pos%headerAlignment) % headerAlignment; padding > 0 {
		if _, err := file.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	for _, name := range names {
		if _, err := file.Write(leaves[name].Raw().Data()); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", name, err)
		}
	}

	return file.Sync()
}

// Load reads a checkpoint back into a parameter tree on the given
// backend.
func Load[B tensor.Backend](path string, backend B) (pinn.ParamTree[B], map[string]string, error) {
	var tree pinn.ParamTree[B]

	file, err := os.Open(path)
	if err != nil {
		return tree, nil, fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer file.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(file, magic); err != nil {
		return tree, nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != magicBytes {
		return tree, nil, fmt.Errorf("not a checkpoint file: bad magic %q", magic)
	}

	var version uint32
	if err := binary.Read(file, binary.LittleEndian, &version); err != nil {
		return tree, nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != formatVersion {
		return tree, nil, fmt.Errorf("unsupported checkpoint version %d", version)
	}

	var headerSize uint64
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		return tree, nil, fmt.Errorf("failed to read header size: %w", err)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerJSON); err != nil {
		return tree, nil, fmt.Errorf("failed to read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return tree, nil, fmt.Errorf("failed to parse header: %w", err)
	}

	pos := int64(4+4+8) + int64(headerSize)
	dataStart := pos + (headerAlignment-pos%headerAlignment)%headerAlignment

	for _, meta := range header.Tensors {
		if meta.DType != tensor.Float32.String() {
			return tree, nil, fmt.Errorf("tensor %s: unsupported dtype %s", meta.Name, meta.DType)
		}

		raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), tensor.Float32, backend.Device())
		if err != nil {
			return tree, nil, fmt.Errorf("tensor %s: %w", meta.Name, err)
		}
		if _, err := file.ReadAt(raw.Data(), dataStart+meta.Offset); err != nil {
			return tree, nil, fmt.Errorf("tensor %s: failed to read data: %w", meta.Name, err)
		}

		if err := place(&tree, meta.Name, tensor.New[float32](raw, backend)); err != nil {
			return tree, nil, err
		}
	}

	return tree, header.Metadata, nil
}

// place routes a leaf back into its tree slot based on the key layout
// produced by ParamTree.Leaves.
func place[B tensor.Backend](tree *pinn.ParamTree[B], name string, t *tensor.Tensor[float32, B]) error {
	parts := strings.Split(name, "/")
	switch {
	case parts[0] == pinn.GroupEqParams && len(parts) == 2:
		if tree.Eq == nil {
			tree.Eq = make(map[string]*tensor.Tensor[float32, B])
		}
		tree.Eq[parts[1]] = t
	case parts[0] == pinn.GroupNNParams && len(parts) == 2:
		if tree.NN == nil {
			tree.NN = make(pinn.NNParams[B])
		}
		tree.NN[parts[1]] = t
	case parts[0] == pinn.GroupNNParams && len(parts) == 3:
		if tree.NNByEq == nil {
			tree.NNByEq = make(map[string]pinn.NNParams[B])
		}
		if tree.NNByEq[parts[1]] == nil {
			tree.NNByEq[parts[1]] = make(pinn.NNParams[B])
		}
		tree.NNByEq[parts[1]][parts[2]] = t
	default:
		return fmt.Errorf("unrecognized tensor name %q", name)
	}
	return nil
}
