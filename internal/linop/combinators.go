package linop

import "github.com/diffqc/diffqc/internal/tensor"

// addOperator is the lazy sum of two operators of identical shape.
type addOperator struct {
	a, b    LinearOperator
	backend tensor.Backend
}

// Add returns the lazy sum a + b. The operand shapes must match exactly;
// mismatches fail construction with *ShapeMismatchError.
func Add(a, b LinearOperator, backend tensor.Backend) (LinearOperator, error) {
	ar, ac := a.Shape()
	br, bc := b.Shape()
	if ar != br || ac != bc {
		return nil, &ShapeMismatchError{Op: "Add", A: [2]int{ar, ac}, B: [2]int{br, bc},
			Reason: "operands must have identical shape"}
	}
	return &addOperator{a: a, b: b, backend: backend}, nil
}

func (o *addOperator) Shape() (int, int) { return o.a.Shape() }

func (o *addOperator) DType() tensor.DataType { return o.a.DType() }

func (o *addOperator) IsHermitian() bool { return o.a.IsHermitian() && o.b.IsHermitian() }

func (o *addOperator) MatVec(v *tensor.Tensor) *tensor.Tensor {
	return o.backend.Add(o.a.MatVec(v), o.b.MatVec(v))
}

func (o *addOperator) RMatVec(v *tensor.Tensor) *tensor.Tensor {
	return o.backend.Add(o.a.RMatVec(v), o.b.RMatVec(v))
}

func (o *addOperator) ToDense() (*tensor.Tensor, error) {
	ad, err := o.a.ToDense()
	if err != nil {
		return nil, err
	}
	bd, err := o.b.ToDense()
	if err != nil {
		return nil, err
	}
	return o.backend.Add(ad, bd), nil
}

// scaledOperator is a lazy scalar multiple of an operator.
type scaledOperator struct {
	c       float64
	a       LinearOperator
	backend tensor.Backend
}

// Scale returns the lazy scalar product c * a.
func Scale(c float64, a LinearOperator, backend tensor.Backend) LinearOperator {
	return &scaledOperator{c: c, a: a, backend: backend}
}

func (o *scaledOperator) Shape() (int, int) { return o.a.Shape() }

func (o *scaledOperator) DType() tensor.DataType { return o.a.DType() }

func (o *scaledOperator) IsHermitian() bool { return o.a.IsHermitian() }

func (o *scaledOperator) MatVec(v *tensor.Tensor) *tensor.Tensor {
	return o.backend.Scale(o.c, o.a.MatVec(v))
}

func (o *scaledOperator) RMatVec(v *tensor.Tensor) *tensor.Tensor {
	return o.backend.Scale(o.c, o.a.RMatVec(v))
}

func (o *scaledOperator) ToDense() (*tensor.Tensor, error) {
	ad, err := o.a.ToDense()
	if err != nil {
		return nil, err
	}
	return o.backend.Scale(o.c, ad), nil
}

// adjointOperator swaps the forward and adjoint actions of its operand.
type adjointOperator struct {
	a       LinearOperator
	backend tensor.Backend
}

// Adjoint returns the lazy adjoint of a: shape transposed, MatVec and
// RMatVec exchanged. Adjoint(Adjoint(a)) acts identically to a.
func Adjoint(a LinearOperator, backend tensor.Backend) LinearOperator {
	return &adjointOperator{a: a, backend: backend}
}

func (o *adjointOperator) Shape() (int, int) {
	r, c := o.a.Shape()
	return c, r
}

func (o *adjointOperator) DType() tensor.DataType { return o.a.DType() }

func (o *adjointOperator) IsHermitian() bool { return o.a.IsHermitian() }

func (o *adjointOperator) MatVec(v *tensor.Tensor) *tensor.Tensor {
	return o.a.RMatVec(v)
}

func (o *adjointOperator) RMatVec(v *tensor.Tensor) *tensor.Tensor {
	return o.a.MatVec(v)
}

func (o *adjointOperator) ToDense() (*tensor.Tensor, error) {
	ad, err := o.a.ToDense()
	if err != nil {
		return nil, err
	}
	return o.backend.Transpose(ad), nil
}

// matmulOperator is the lazy product of two operators.
type matmulOperator struct {
	a, b    LinearOperator
	backend tensor.Backend
}

// Matmul returns the lazy operator product a b, with
// MatVec(v) = a.MatVec(b.MatVec(v)). Requires a.cols == b.rows.
func Matmul(a, b LinearOperator, backend tensor.Backend) (LinearOperator, error) {
	ar, ac := a.Shape()
	br, bc := b.Shape()
	if ac != br {
		return nil, &ShapeMismatchError{Op: "Matmul", A: [2]int{ar, ac}, B: [2]int{br, bc},
			Reason: "left operand's columns must equal right operand's rows"}
	}
	return &matmulOperator{a: a, b: b, backend: backend}, nil
}

func (o *matmulOperator) Shape() (int, int) {
	ar, _ := o.a.Shape()
	_, bc := o.b.Shape()
	return ar, bc
}

func (o *matmulOperator) DType() tensor.DataType { return o.a.DType() }

// IsHermitian is false for products: even hermitian factors generally do
// not commute.
func (o *matmulOperator) IsHermitian() bool { return false }

func (o *matmulOperator) MatVec(v *tensor.Tensor) *tensor.Tensor {
	return o.a.MatVec(o.b.MatVec(v))
}

func (o *matmulOperator) RMatVec(v *tensor.Tensor) *tensor.Tensor {
	return o.b.RMatVec(o.a.RMatVec(v))
}

func (o *matmulOperator) ToDense() (*tensor.Tensor, error) {
	ad, err := o.a.ToDense()
	if err != nil {
		return nil, err
	}
	bd, err := o.b.ToDense()
	if err != nil {
		return nil, err
	}
	return o.backend.MatMul(ad, bd), nil
}
