// Package linop implements a lazily-composed linear-operator algebra.
//
// A LinearOperator represents a linear map through its action on vectors
// rather than a materialized matrix. Combinators (Add, Scale, Adjoint,
// Matmul) return new operators that hold their operands by reference and
// defer all arithmetic to MatVec time, so an iterative solver can work with
// a Fock or overlap operator that is never formed densely. Shape checks run
// eagerly at construction and fail with *ShapeMismatchError.
//
// Operand graphs are DAGs: operands may be shared between composites, and
// no cycles are possible because construction only references existing
// operators.
//
// All vector actions route through a tensor.Backend. Handing the combinators
// a taped backend makes gradients propagate through the lazy graph with no
// extra machinery: each combinator's action is itself a composition of
// recorded primitives.
package linop

import (
	"fmt"

	"github.com/diffqc/diffqc/internal/tensor"
)

// defaultDenseCap is the element-count limit up to which an implicit
// operator will materialize itself column by column in ToDense.
const defaultDenseCap = 1 << 16

// LinearOperator is a linear map with declared shape and dtype metadata.
type LinearOperator interface {
	// Shape returns the (rows, cols) of the represented matrix. The shape
	// is fixed for the operator's lifetime.
	Shape() (rows, cols int)

	// DType returns the operator's precision tag.
	DType() tensor.DataType

	// IsHermitian reports whether the operator is self-adjoint, in which
	// case RMatVec is MatVec.
	IsHermitian() bool

	// MatVec applies the forward action to a 1-D tensor of length cols.
	MatVec(v *tensor.Tensor) *tensor.Tensor

	// RMatVec applies the adjoint action to a 1-D tensor of length rows.
	RMatVec(v *tensor.Tensor) *tensor.Tensor

	// ToDense materializes the operator when feasible. Implicit-only
	// operators above their materialization cap return an error wrapping
	// ErrNotMaterializable.
	ToDense() (*tensor.Tensor, error)
}

func checkVec(op string, v *tensor.Tensor, want int) {
	if len(v.Shape()) != 1 || v.Shape()[0] != want {
		panic(fmt.Sprintf("linop: %s: vector of length %d required, got shape %v", op, want, v.Shape()))
	}
}

// matrixOperator wraps a dense matrix; actions are ordinary matrix-vector
// products through the backend.
type matrixOperator struct {
	mat       *tensor.Tensor
	hermitian bool
	backend   tensor.Backend
}

// FromDense wraps a 2-D tensor as a LinearOperator. If hermitian is set the
// adjoint action reuses the forward action; otherwise RMatVec multiplies by
// the transpose.
func FromDense(m *tensor.Tensor, hermitian bool, backend tensor.Backend) (LinearOperator, error) {
	if len(m.Shape()) != 2 {
		return nil, fmt.Errorf("linop: FromDense: 2-D tensor required, got shape %v", m.Shape())
	}
	if hermitian && m.Shape()[0] != m.Shape()[1] {
		return nil, &ShapeMismatchError{
			Op: "FromDense", A: [2]int{m.Shape()[0], m.Shape()[1]}, B: [2]int{m.Shape()[1], m.Shape()[0]},
			Reason: "hermitian operator must be square",
		}
	}
	return &matrixOperator{mat: m, hermitian: hermitian, backend: backend}, nil
}

func (o *matrixOperator) Shape() (int, int) {
	return o.mat.Shape()[0], o.mat.Shape()[1]
}

func (o *matrixOperator) DType() tensor.DataType { return o.mat.DType() }

func (o *matrixOperator) IsHermitian() bool { return o.hermitian }

func (o *matrixOperator) MatVec(v *tensor.Tensor) *tensor.Tensor {
	rows, cols := o.Shape()
	checkVec("MatVec", v, cols)
	col := o.backend.Reshape(v, tensor.Shape{cols, 1})
	return o.backend.Reshape(o.backend.MatMul(o.mat, col), tensor.Shape{rows})
}

func (o *matrixOperator) RMatVec(v *tensor.Tensor) *tensor.Tensor {
	if o.hermitian {
		return o.MatVec(v)
	}
	rows, cols := o.Shape()
	checkVec("RMatVec", v, rows)
	col := o.backend.Reshape(v, tensor.Shape{rows, 1})
	return o.backend.Reshape(o.backend.MatMul(o.backend.Transpose(o.mat), col), tensor.Shape{cols})
}

func (o *matrixOperator) ToDense() (*tensor.Tensor, error) {
	return o.mat, nil
}

// funcOperator wraps black-box forward/adjoint actions.
type funcOperator struct {
	rows, cols int
	fwd, adj   func(v *tensor.Tensor) *tensor.Tensor
	hermitian  bool
	backend    tensor.Backend
	denseCap   int
}

// FromFunc wraps opaque vector actions as a LinearOperator. adj may be nil
// only for hermitian operators, where the forward action is reused.
func FromFunc(rows, cols int, fwd, adj func(v *tensor.Tensor) *tensor.Tensor, hermitian bool, backend tensor.Backend) (LinearOperator, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("linop: FromFunc: positive dimensions required, got %dx%d", rows, cols)
	}
	if hermitian && rows != cols {
		return nil, &ShapeMismatchError{
			Op: "FromFunc", A: [2]int{rows, cols}, B: [2]int{cols, rows},
			Reason: "hermitian operator must be square",
		}
	}
	if adj == nil && !hermitian {
		return nil, fmt.Errorf("linop: FromFunc: adjoint action required for non-hermitian operators")
	}
	return &funcOperator{rows: rows, cols: cols, fwd: fwd, adj: adj, hermitian: hermitian,
		backend: backend, denseCap: defaultDenseCap}, nil
}

func (o *funcOperator) Shape() (int, int) { return o.rows, o.cols }

func (o *funcOperator) DType() tensor.DataType { return tensor.Float64 }

func (o *funcOperator) IsHermitian() bool { return o.hermitian }

func (o *funcOperator) MatVec(v *tensor.Tensor) *tensor.Tensor {
	checkVec("MatVec", v, o.cols)
	return o.fwd(v)
}

func (o *funcOperator) RMatVec(v *tensor.Tensor) *tensor.Tensor {
	checkVec("RMatVec", v, o.rows)
	if o.hermitian && o.adj == nil {
		return o.fwd(v)
	}
	return o.adj(v)
}

// ToDense materializes column by column through MatVec, up to the cap.
func (o *funcOperator) ToDense() (*tensor.Tensor, error) {
	if o.rows*o.cols > o.denseCap {
		return nil, fmt.Errorf("linop: implicit %dx%d operator exceeds materialization cap %d: %w",
			o.rows, o.cols, o.denseCap, ErrNotMaterializable)
	}
	out := tensor.Zeros(tensor.Shape{o.rows, o.cols})
	od := out.Float64s()
	for j := 0; j < o.cols; j++ {
		e := tensor.Zeros(tensor.Shape{o.cols})
		e.Float64s()[j] = 1
		col := o.fwd(e).Float64s()
		for i := 0; i < o.rows; i++ {
			od[i*o.cols+j] = col[i]
		}
	}
	return out, nil
}
