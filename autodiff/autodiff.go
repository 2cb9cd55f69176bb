// Copyright 2026 The diffqc Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation through
// a tape-recording backend decorator.
//
// Wrapping any tensor.Backend yields a backend whose differentiable
// primitives are recorded on a gradient tape; solver kernels pass through
// unrecorded. Example:
//
//	engine := autodiff.New(cpu.New())
//	engine.Tape().StartRecording()
//	y := engine.MatMul(a, b)
//	grads := engine.Tape().Backward(tensor.Ones(y.Shape()), engine)
package autodiff

import (
	"github.com/diffqc/diffqc/internal/autodiff"
	"github.com/diffqc/diffqc/internal/tensor"
)

// Backend is the tape-recording backend decorator.
type Backend[B tensor.Backend] = autodiff.Backend[B]

// Engine is a backend that carries a gradient tape.
type Engine = autodiff.Engine

// GradientTape records operations for the reverse pass.
type GradientTape = autodiff.GradientTape

// New wraps a backend with tape recording.
func New[B tensor.Backend](inner B) *Backend[B] { return autodiff.New(inner) }

// Backward runs the reverse pass from a scalar tensor, returning gradients
// keyed by input tensor identity.
func Backward(t *tensor.Tensor, backend Engine) map[*tensor.Tensor]*tensor.Tensor {
	return autodiff.Backward(t, backend)
}
