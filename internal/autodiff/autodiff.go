// Package autodiff implements reverse-mode automatic differentiation using
// the decorator pattern.
//
// Backend[B] wraps any tensor.Backend and records the differentiable
// primitives it executes on a GradientTape. Solver kernels (eigensolves,
// linear solves, Cholesky) pass through unrecorded: they sit outside the
// gradient boundary, which is how an SCF driver differentiates its converged
// output without unrolling the fixed-point iteration.
//
// Usage:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
//
//	backend.Tape().StartRecording()
//	y := backend.MatMul(w, x) // recorded
//	grads := backend.Tape().Backward(seed, backend)
package autodiff

import (
	"github.com/diffqc/diffqc/internal/autodiff/ops"
	"github.com/diffqc/diffqc/internal/tensor"
)

// Backend wraps a tensor.Backend and adds gradient tracking.
// Type parameter B must satisfy the tensor.Backend interface.
type Backend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New creates a new autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return &Backend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
func (b *Backend[B]) Tape() *GradientTape {
	return b.tape
}

// GetTape returns the gradient tape (implements the Engine interface).
func (b *Backend[B]) GetTape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *Backend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *Backend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Add performs elementwise addition and records the operation.
func (b *Backend[B]) Add(x, y *tensor.Tensor) *tensor.Tensor {
	result := b.inner.Add(x, y)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewAddOp(x, y, result))
	}
	return result
}

// Sub performs elementwise subtraction and records the operation.
func (b *Backend[B]) Sub(x, y *tensor.Tensor) *tensor.Tensor {
	result := b.inner.Sub(x, y)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSubOp(x, y, result))
	}
	return result
}

// Mul performs elementwise multiplication and records the operation.
func (b *Backend[B]) Mul(x, y *tensor.Tensor) *tensor.Tensor {
	result := b.inner.Mul(x, y)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMulOp(x, y, result))
	}
	return result
}

// Scale multiplies by a constant and records the operation.
func (b *Backend[B]) Scale(c float64, x *tensor.Tensor) *tensor.Tensor {
	result := b.inner.Scale(c, x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewScaleOp(c, x, result))
	}
	return result
}

// Pow raises elements to a constant power and records the operation.
func (b *Backend[B]) Pow(x *tensor.Tensor, p float64) *tensor.Tensor {
	result := b.inner.Pow(x, p)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewPowOp(x, result, p))
	}
	return result
}

// MatMul performs matrix multiplication and records the operation.
func (b *Backend[B]) MatMul(x, y *tensor.Tensor) *tensor.Tensor {
	result := b.inner.MatMul(x, y)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMatMulOp(x, y, result))
	}
	return result
}

// Transpose transposes a tensor and records the operation.
func (b *Backend[B]) Transpose(x *tensor.Tensor) *tensor.Tensor {
	result := b.inner.Transpose(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewTransposeOp(x, result))
	}
	return result
}

// Sum reduces to a scalar and records the operation.
func (b *Backend[B]) Sum(x *tensor.Tensor) *tensor.Tensor {
	result := b.inner.Sum(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSumOp(x, result))
	}
	return result
}

// SumDim sums along one dimension and records the operation.
func (b *Backend[B]) SumDim(x *tensor.Tensor, dim int) *tensor.Tensor {
	result := b.inner.SumDim(x, dim)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSumDimOp(x, result, dim))
	}
	return result
}

// Reshape changes the shape and records the operation.
func (b *Backend[B]) Reshape(x *tensor.Tensor, shape tensor.Shape) *tensor.Tensor {
	result := b.inner.Reshape(x, shape)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewReshapeOp(x, result))
	}
	return result
}

// QR factorizes x and records the operation with q as the differentiable
// output. Gradients do not flow through r.
func (b *Backend[B]) QR(x *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor) {
	q, r := b.inner.QR(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewQROp(x, q, r))
	}
	return q, r
}

// Expm computes the matrix exponential and records the operation.
func (b *Backend[B]) Expm(x *tensor.Tensor) *tensor.Tensor {
	result := b.inner.Expm(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewExpmOp(x, result))
	}
	return result
}

// SymEig passes through unrecorded: the eigensolve is a black-box solver
// kernel outside the gradient boundary.
func (b *Backend[B]) SymEig(x *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor) {
	return b.inner.SymEig(x)
}

// Solve passes through unrecorded.
func (b *Backend[B]) Solve(x, y *tensor.Tensor) *tensor.Tensor {
	return b.inner.Solve(x, y)
}

// SqrtmInvSym passes through unrecorded.
func (b *Backend[B]) SqrtmInvSym(x *tensor.Tensor) *tensor.Tensor {
	return b.inner.SqrtmInvSym(x)
}

// CholeskyFactor passes through unrecorded.
func (b *Backend[B]) CholeskyFactor(x *tensor.Tensor) (*tensor.Tensor, error) {
	return b.inner.CholeskyFactor(x)
}
