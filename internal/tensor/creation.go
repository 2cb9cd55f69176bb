package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Zeros creates a Float64 tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return MustNew(shape, Float64)
}

// Ones creates a Float64 tensor filled with ones.
func Ones(shape Shape) *Tensor {
	t := MustNew(shape, Float64)
	data := t.Float64s()
	for i := range data {
		data[i] = 1
	}
	return t
}

// Full creates a Float64 tensor filled with v.
func Full(shape Shape, v float64) *Tensor {
	t := MustNew(shape, Float64)
	data := t.Float64s()
	for i := range data {
		data[i] = v
	}
	return t
}

// Eye creates an n-by-n identity matrix.
func Eye(n int) *Tensor {
	t := MustNew(Shape{n, n}, Float64)
	for i := 0; i < n; i++ {
		t.SetAt(1, i, i)
	}
	return t
}

// Scalar creates a 0-D tensor holding v.
func Scalar(v float64) *Tensor {
	t := MustNew(Shape{}, Float64)
	t.f64[0] = v
	return t
}

// FromSlice creates a Float64 tensor from a flat slice. The slice is copied.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	t, err := New(shape, Float64)
	if err != nil {
		return nil, err
	}
	copy(t.f64, data)
	return t, nil
}

// FromDense copies a gonum dense matrix into a fresh 2-D tensor.
func FromDense(m mat.Matrix) *Tensor {
	r, c := m.Dims()
	t := MustNew(Shape{r, c}, Float64)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			t.f64[i*c+j] = m.At(i, j)
		}
	}
	return t
}
