package dft

import (
	"fmt"

	"github.com/diffqc/diffqc/internal/tensor"
)

// CholeskyFitter fits Coulomb matrices through a Cholesky factorization of
// the (n^2, n^2) repulsion map: with M = L L^T,
//
//	J = reshape(L (L^T vec(D)))
//
// so the quadratic contraction splits into two triangular products. Both
// products run through the backend and are recorded when a tape is active.
type CholeskyFitter struct {
	l       *tensor.Tensor
	lt      *tensor.Tensor
	backend tensor.Backend
	n       int
}

// NewCholeskyFitter factorizes the repulsion map. The map must be symmetric
// positive definite, which holds for a repulsion tensor over a linearly
// independent basis.
func NewCholeskyFitter(coulomb *tensor.Tensor, backend tensor.Backend) (*CholeskyFitter, error) {
	s := coulomb.Shape()
	if len(s) != 2 || s[0] != s[1] {
		return nil, fmt.Errorf("dft: repulsion map must be square, got %v", s)
	}
	n := 0
	for n*n < s[0] {
		n++
	}
	if n*n != s[0] {
		return nil, fmt.Errorf("dft: repulsion map dimension %d is not a perfect square", s[0])
	}
	l, err := backend.CholeskyFactor(coulomb)
	if err != nil {
		return nil, err
	}
	return &CholeskyFitter{l: l, lt: backend.Transpose(l), backend: backend, n: n}, nil
}

// FitCoulomb returns the Coulomb matrix of dm.
func (f *CholeskyFitter) FitCoulomb(dm *tensor.Tensor) *tensor.Tensor {
	vec := f.backend.Reshape(dm, tensor.Shape{f.n * f.n, 1})
	half := f.backend.MatMul(f.lt, vec)
	return f.backend.Reshape(f.backend.MatMul(f.l, half), tensor.Shape{f.n, f.n})
}
