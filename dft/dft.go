// Copyright 2026 The diffqc Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dft provides the public API for self-consistent-field
// calculations with implicit differentiation.
//
// Example:
//
//	engine := autodiff.New(cpu.New())
//	sys, _ := dft.NewIntegralSystem(cfg)
//	calc, _ := dft.New(sys, dft.DefaultConfig(), engine)
//	calc.Run()
//	if calc.State() == dft.Converged {
//		grads, _ := calc.Gradients()
//		_ = grads
//	}
package dft

import (
	"github.com/diffqc/diffqc/internal/autodiff"
	"github.com/diffqc/diffqc/internal/dft"
	"github.com/diffqc/diffqc/internal/tensor"
)

// System describes a molecular system.
type System = dft.System

// Hamilton produces the operators of a calculation.
type Hamilton = dft.Hamilton

// XC is an exchange-correlation functional.
type XC = dft.XC

// Grid provides quadrature points and weights.
type Grid = dft.Grid

// DensityFitter maps a density matrix to its fitted Coulomb matrix.
type DensityFitter = dft.DensityFitter

// IntegralSystem is a System built from precomputed integral tables.
type IntegralSystem = dft.IntegralSystem

// IntegralSystemConfig collects the tables an IntegralSystem is built from.
type IntegralSystemConfig = dft.IntegralSystemConfig

// GaussianShell is a contracted s-type Gaussian basis function.
type GaussianShell = dft.GaussianShell

// UniformGrid is a rectangular box quadrature.
type UniformGrid = dft.UniformGrid

// LDAExchange is the local density approximation to exchange.
type LDAExchange = dft.LDAExchange

// CholeskyFitter fits Coulomb matrices through a Cholesky factorization of
// the repulsion map.
type CholeskyFitter = dft.CholeskyFitter

// KSCalc drives a self-consistent-field calculation.
type KSCalc = dft.KSCalc

// Config controls a self-consistent calculation.
type Config = dft.Config

// State is the lifecycle phase of a KSCalc.
type State = dft.State

// Calculation states.
const (
	Uninitialized State = dft.Uninitialized
	Converging    State = dft.Converging
	Converged     State = dft.Converged
	Failed        State = dft.Failed
)

// NewIntegralSystem validates integral tables and wraps them as a System.
func NewIntegralSystem(cfg IntegralSystemConfig) (*IntegralSystem, error) {
	return dft.NewIntegralSystem(cfg)
}

// New prepares a calculation over a system.
func New(sys System, cfg Config, engine autodiff.Engine) (*KSCalc, error) {
	return dft.New(sys, cfg, engine)
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config { return dft.DefaultConfig() }

// NewUniformGrid builds a box quadrature grid.
func NewUniformGrid(min, max [3]float64, npts [3]int) *UniformGrid {
	return dft.NewUniformGrid(min, max, npts)
}

// NewLDAExchange creates the LDA exchange functional over a backend.
func NewLDAExchange(backend tensor.Backend) *LDAExchange {
	return dft.NewLDAExchange(backend)
}

// NewCholeskyFitter factorizes an (n^2, n^2) repulsion map.
func NewCholeskyFitter(coulomb *tensor.Tensor, backend tensor.Backend) (*CholeskyFitter, error) {
	return dft.NewCholeskyFitter(coulomb, backend)
}

// BasisOnGrid tabulates shells on a grid as a (npoints, nshells) matrix.
func BasisOnGrid(shells []GaussianShell, grid Grid) *tensor.Tensor {
	return dft.BasisOnGrid(shells, grid)
}
