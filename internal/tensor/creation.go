package tensor

import (
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	dtype := inferDataType(dummy)

	raw, err := NewRaw(shape, dtype, b.Device())
	if err != nil {
		panic(err) // Shape validation should prevent this
	}

	// Data is already zero-initialized by make()
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with a specific value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Scalar creates a single-element tensor holding the given value.
// Loss terms use it for weighted accumulators and zero contributions.
func Scalar[T DType, B Backend](value T, b B) *Tensor[T, B] {
	return Full[T, B](Shape{1}, value, b)
}

// Linspace creates a 1-D tensor of n evenly spaced values over [lo, hi].
// Used by the data generators for collocation time grids.
func Linspace[T DType, B Backend](lo, hi T, n int, b B) *Tensor[T, B] {
	if n < 2 {
		panic("Linspace: need at least 2 points")
	}
	t := Zeros[T, B](Shape{n}, b)
	data := t.Data()
	step := float64(hi-lo) / float64(n-1)
	for i := range data {
		data[i] = lo + T(float64(i)*step)
	}
	return t
}

// Randn creates a tensor with values drawn from a standard normal
// distribution using the provided source.
func Randn[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(rng.NormFloat64())
	}
	return t
}

// Uniform creates a tensor with values drawn uniformly from [lo, hi).
func Uniform[T DType, B Backend](shape Shape, lo, hi T, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = lo + T(rng.Float64()*float64(hi-lo))
	}
	return t
}

// Xavier creates a tensor with Xavier/Glorot uniform initialization.
// Bound is sqrt(6 / (fanIn + fanOut)).
func Xavier[T DType, B Backend](fanIn, fanOut int, shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return Uniform[T, B](shape, T(-bound), T(bound), rng, b)
}
