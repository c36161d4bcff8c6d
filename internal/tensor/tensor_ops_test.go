package tensor_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/gopinn/gopinn/internal/backend/cpu"
	"github.com/gopinn/gopinn/internal/tensor"
)

const epsilon = 1e-5

func closeTo(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func TestFromSlice(t *testing.T) {
	b := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, b)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}

	if !x.Shape().Equal(tensor.Shape{2, 2}) {
		t.Errorf("Shape() = %v, want [2 2]", x.Shape())
	}
	if x.At(1, 0) != 3 {
		t.Errorf("At(1, 0) = %v, want 3", x.At(1, 0))
	}
}

func TestFromSliceSizeMismatch(t *testing.T) {
	b := cpu.New()
	if _, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}, b); err == nil {
		t.Error("size mismatch accepted")
	}
}

func TestCreation(t *testing.T) {
	b := cpu.New()

	zeros := tensor.Zeros[float32](tensor.Shape{2, 2}, b)
	for i, v := range zeros.Data() {
		if v != 0 {
			t.Errorf("Zeros[%d] = %v", i, v)
		}
	}

	ones := tensor.Ones[float32](tensor.Shape{3}, b)
	for i, v := range ones.Data() {
		if v != 1 {
			t.Errorf("Ones[%d] = %v", i, v)
		}
	}

	full := tensor.Full(tensor.Shape{2}, float32(7), b)
	if full.Data()[0] != 7 || full.Data()[1] != 7 {
		t.Errorf("Full data = %v", full.Data())
	}

	s := tensor.Scalar(float32(3.5), b)
	if !s.Shape().Equal(tensor.Shape{1}) || s.Item() != 3.5 {
		t.Errorf("Scalar = %v %v", s.Shape(), s.Item())
	}
}

func TestLinspace(t *testing.T) {
	b := cpu.New()

	x := tensor.Linspace[float32](0, 1, 5, b)
	want := []float32{0, 0.25, 0.5, 0.75, 1}
	for i, v := range x.Data() {
		if !closeTo(v, want[i]) {
			t.Errorf("Linspace[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestRandnDeterministic(t *testing.T) {
	b := cpu.New()

	a := tensor.Randn[float32](tensor.Shape{8}, rand.New(rand.NewSource(1)), b)
	c := tensor.Randn[float32](tensor.Shape{8}, rand.New(rand.NewSource(1)), b)

	for i := range a.Data() {
		if a.Data()[i] != c.Data()[i] {
			t.Fatal("same seed produced different draws")
		}
	}
}

func TestXavierScale(t *testing.T) {
	b := cpu.New()

	fanIn, fanOut := 64, 64
	x := tensor.Xavier[float32](fanIn, fanOut, tensor.Shape{fanIn, fanOut}, rand.New(rand.NewSource(2)), b)

	limit := float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))
	for i, v := range x.Data() {
		if v < -limit || v > limit {
			t.Fatalf("Xavier[%d] = %v outside [-%v, %v]", i, v, limit, limit)
		}
	}
}

func TestSetAndAt(t *testing.T) {
	b := cpu.New()

	x := tensor.Zeros[float32](tensor.Shape{2, 3}, b)
	x.Set(5, 1, 2)

	if x.At(1, 2) != 5 {
		t.Errorf("At(1, 2) = %v, want 5", x.At(1, 2))
	}
	if x.At(0, 0) != 0 {
		t.Errorf("At(0, 0) = %v, want 0", x.At(0, 0))
	}
}

func TestTensorClone(t *testing.T) {
	b := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, b)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}

	y := x.Clone()
	y.Set(9, 0)

	if x.At(0) != 1 {
		t.Error("Clone shares storage with the original")
	}
}

func TestMethodChaining(t *testing.T) {
	b := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, b)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}

	// (x * 2 + 1).Mean() over {3, 5, 7, 9}
	got := x.MulScalar(2).AddScalar(1).Mean().Item()
	if !closeTo(got, 6) {
		t.Errorf("chained result = %v, want 6", got)
	}
}

func TestMatMulChain(t *testing.T) {
	b := cpu.New()

	a, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, b)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	w, err := tensor.FromSlice([]float32{1, 0, 0, 1}, tensor.Shape{2, 2}, b)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}

	got := a.MatMul(w)
	for i, v := range a.Data() {
		if got.Data()[i] != v {
			t.Errorf("identity matmul changed data: %v vs %v", got.Data(), a.Data())
			break
		}
	}
}
