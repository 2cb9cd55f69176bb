// Copyright 2026 The diffqc Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package orb provides the public API for differentiable orthonormal
// orbital parameterizations.
package orb

import (
	"github.com/diffqc/diffqc/internal/orb"
	"github.com/diffqc/diffqc/internal/tensor"
)

// Parameterization is an orthonormal orbital parameterization.
type Parameterization = orb.Parameterization

// QROrbParams parameterizes coefficients through a thin QR factorization.
type QROrbParams = orb.QROrbParams

// MatExpOrbParams parameterizes coefficients through a matrix exponential
// of a skew-symmetric generator.
type MatExpOrbParams = orb.MatExpOrbParams

// NewQROrbParams creates a QR parameterization for norb orbitals over
// nbasis basis functions. whitener may be nil.
func NewQROrbParams(nbasis, norb int, whitener *tensor.Tensor, backend tensor.Backend) (*QROrbParams, error) {
	return orb.NewQROrbParams(nbasis, norb, whitener, backend)
}

// NewMatExpOrbParams creates a matrix-exponential parameterization around
// the given orthonormal reference. whitener may be nil.
func NewMatExpOrbParams(reference, whitener *tensor.Tensor, backend tensor.Backend) (*MatExpOrbParams, error) {
	return orb.NewMatExpOrbParams(reference, whitener, backend)
}
