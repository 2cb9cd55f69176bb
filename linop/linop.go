// Copyright 2026 The diffqc Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package linop provides the public API for the lazily-composed
// linear-operator algebra.
//
// Operators represent linear maps through their vector action; combinators
// build composite operators without materializing matrices:
//
//	f, _ := linop.FromDense(m, true, b)
//	g, _ := linop.Add(f, linop.Scale(2, f, b), b)
//	y := g.MatVec(x)
package linop

import (
	"github.com/diffqc/diffqc/internal/linop"
	"github.com/diffqc/diffqc/internal/tensor"
)

// LinearOperator is a linear map with declared shape and dtype metadata.
type LinearOperator = linop.LinearOperator

// ShapeMismatchError reports incompatible operand shapes at construction.
type ShapeMismatchError = linop.ShapeMismatchError

// ErrNotMaterializable marks operators that refuse ToDense.
var ErrNotMaterializable = linop.ErrNotMaterializable

// FromDense wraps a 2-D tensor as a LinearOperator.
func FromDense(m *tensor.Tensor, hermitian bool, backend tensor.Backend) (LinearOperator, error) {
	return linop.FromDense(m, hermitian, backend)
}

// FromFunc wraps black-box forward/adjoint actions as a LinearOperator.
func FromFunc(rows, cols int, fwd, adj func(*tensor.Tensor) *tensor.Tensor, hermitian bool, backend tensor.Backend) (LinearOperator, error) {
	return linop.FromFunc(rows, cols, fwd, adj, hermitian, backend)
}

// Add returns the lazy sum of two operators of equal shape.
func Add(a, b LinearOperator, backend tensor.Backend) (LinearOperator, error) {
	return linop.Add(a, b, backend)
}

// Scale returns the operator scaled by a constant.
func Scale(c float64, a LinearOperator, backend tensor.Backend) LinearOperator {
	return linop.Scale(c, a, backend)
}

// Adjoint returns the adjoint operator.
func Adjoint(a LinearOperator, backend tensor.Backend) LinearOperator {
	return linop.Adjoint(a, backend)
}

// Matmul returns the lazy composition a @ b.
func Matmul(a, b LinearOperator, backend tensor.Backend) (LinearOperator, error) {
	return linop.Matmul(a, b, backend)
}
