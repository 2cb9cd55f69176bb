package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Tensor is the dense value type every operator, module and driver in this
// core works with. It is a plain shape + strides + flat buffer triple; all
// compute goes through a Backend so a gradient tape can interpose on it.
//
// The identity of a *Tensor (its pointer) matters: the autodiff tape keys
// gradients by pointer, so operations must return fresh tensors rather than
// mutating inputs in place.
type Tensor struct {
	shape  Shape
	stride []int
	dtype  DataType
	f64    []float64
	f32    []float32
}

// New allocates a zero-initialized tensor with the given shape and dtype.
func New(shape Shape, dtype DataType) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	t := &Tensor{
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
	}
	switch dtype {
	case Float64:
		t.f64 = make([]float64, shape.NumElements())
	case Float32:
		t.f32 = make([]float32, shape.NumElements())
	default:
		return nil, fmt.Errorf("unsupported dtype %s", dtype)
	}
	return t, nil
}

// MustNew is New for shapes known to be valid at the call site.
func MustNew(shape Shape, dtype DataType) *Tensor {
	t, err := New(shape, dtype)
	if err != nil {
		panic(err)
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Strides returns the tensor's memory strides.
func (t *Tensor) Strides() []int {
	return t.stride
}

// DType returns the tensor's precision tag.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// Float64s returns the backing slice of a Float64 tensor.
// Modifications to the returned slice modify the tensor.
func (t *Tensor) Float64s() []float64 {
	if t.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", t.dtype))
	}
	return t.f64
}

// Float32s returns the backing slice of a Float32 tensor.
func (t *Tensor) Float32s() []float32 {
	if t.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", t.dtype))
	}
	return t.f32
}

// Item returns the value of a single-element tensor.
func (t *Tensor) Item() float64 {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("Item() only works for scalar tensors, got shape %v", t.shape))
	}
	if t.dtype == Float32 {
		return float64(t.f32[0])
	}
	return t.f64[0]
}

// At returns the element at the given indices.
func (t *Tensor) At(indices ...int) float64 {
	return t.Float64s()[t.offsetOf(indices)]
}

// SetAt sets the element at the given indices.
func (t *Tensor) SetAt(value float64, indices ...int) {
	t.Float64s()[t.offsetOf(indices)] = value
}

func (t *Tensor) offsetOf(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(t.shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		offset += idx * t.stride[i]
	}
	return offset
}

// Clone creates a deep copy of the tensor. The copy is a new tape leaf.
func (t *Tensor) Clone() *Tensor {
	c := MustNew(t.shape, t.dtype)
	switch t.dtype {
	case Float64:
		copy(c.f64, t.f64)
	case Float32:
		copy(c.f32, t.f32)
	}
	return c
}

// Dense returns a gonum view over a 2-D Float64 tensor. The view shares the
// backing slice: writes through it are visible in the tensor.
func (t *Tensor) Dense() *mat.Dense {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("Dense() needs a 2-D tensor, got shape %v", t.shape))
	}
	return mat.NewDense(t.shape[0], t.shape[1], t.Float64s())
}

// Vec returns a gonum vector view over a 1-D Float64 tensor.
func (t *Tensor) Vec() *mat.VecDense {
	if len(t.shape) != 1 {
		panic(fmt.Sprintf("Vec() needs a 1-D tensor, got shape %v", t.shape))
	}
	return mat.NewVecDense(t.shape[0], t.Float64s())
}

// AllClose reports whether two tensors have equal shape and elementwise
// difference within tol. Non-finite elements never compare close.
func (t *Tensor) AllClose(other *Tensor, tol float64) bool {
	if !t.shape.Equal(other.shape) || t.dtype != Float64 || other.dtype != Float64 {
		return false
	}
	for i, v := range t.f64 {
		d := v - other.f64[i]
		if math.IsNaN(d) || math.Abs(d) > tol {
			return false
		}
	}
	return true
}

// String returns a short human-readable description.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor[%s]%v", t.dtype, t.shape)
}
