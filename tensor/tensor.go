// Copyright 2026 The diffqc Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the numeric substrate of
// diffqc.
//
// The package re-exports the core types every other package builds on:
//   - Tensor: a dense row-major multidimensional array
//   - Backend: the kernel surface numeric implementations provide
//   - Shape, DataType: structural metadata
//
// Example:
//
//	b := cpu.New()
//	x := tensor.Eye(3)
//	y := b.MatMul(x, x)
package tensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/diffqc/diffqc/internal/tensor"
)

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float64 DataType = tensor.Float64
	Float32 DataType = tensor.Float32
)

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// Tensor is a dense row-major multidimensional array.
type Tensor = tensor.Tensor

// Backend is the kernel surface every numeric implementation must provide.
type Backend = tensor.Backend

// New creates a zero-filled tensor of the given shape and dtype.
func New(shape Shape, dtype DataType) (*Tensor, error) { return tensor.New(shape, dtype) }

// MustNew is New, panicking on invalid shapes.
func MustNew(shape Shape, dtype DataType) *Tensor { return tensor.MustNew(shape, dtype) }

// Zeros creates a Float64 tensor filled with zeros.
func Zeros(shape Shape) *Tensor { return tensor.Zeros(shape) }

// Ones creates a Float64 tensor filled with ones.
func Ones(shape Shape) *Tensor { return tensor.Ones(shape) }

// Full creates a Float64 tensor filled with v.
func Full(shape Shape, v float64) *Tensor { return tensor.Full(shape, v) }

// Eye creates an n-by-n identity matrix.
func Eye(n int) *Tensor { return tensor.Eye(n) }

// Scalar creates a 0-D tensor holding v.
func Scalar(v float64) *Tensor { return tensor.Scalar(v) }

// FromSlice creates a Float64 tensor from a flat slice. The slice is copied.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// FromDense copies a gonum dense matrix into a fresh 2-D tensor.
func FromDense(m mat.Matrix) *Tensor { return tensor.FromDense(m) }
