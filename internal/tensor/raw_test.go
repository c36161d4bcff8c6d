package tensor

import "testing"

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}

	assertEqualShape(t, Shape{2, 3}, raw.Shape(), "shape")
	if raw.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", raw.NumElements())
	}
	if raw.ByteSize() != 24 {
		t.Errorf("ByteSize() = %d, want 24", raw.ByteSize())
	}
	if len(raw.AsFloat32()) != 6 {
		t.Errorf("AsFloat32() has %d elements, want 6", len(raw.AsFloat32()))
	}
}

func TestNewRawRejectsBadShape(t *testing.T) {
	if _, err := NewRaw(Shape{2, 0}, Float32, CPU); err == nil {
		t.Error("zero dimension accepted")
	}
}

func TestRawClone(t *testing.T) {
	raw, err := NewRaw(Shape{3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	copy(raw.AsFloat32(), []float32{1, 2, 3})

	clone := raw.Clone()
	clone.AsFloat32()[0] = 99

	if raw.AsFloat32()[0] != 1 {
		t.Error("Clone shares storage with the original")
	}
}

func TestRawDetach(t *testing.T) {
	raw, err := NewRaw(Shape{3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	copy(raw.AsFloat32(), []float32{1, 2, 3})

	detached := raw.Detach()
	if detached == raw {
		t.Error("Detach returned the same header")
	}

	// Detach shares the buffer; writes remain visible through both
	// headers.
	detached.AsFloat32()[0] = 42
	if raw.AsFloat32()[0] != 42 {
		t.Error("Detach copied the buffer")
	}
}
