// Package dft defines the capability contracts a quantum-chemical system
// satisfies (System, Hamilton, XC, Grid, DensityFitter) and the KSCalc
// driver that composes them into one differentiable self-consistent-field
// calculation.
//
// Molecular parsing and integral evaluation are external collaborators:
// a system here is built from precomputed integral tables and stays
// immutable for the lifetime of a calculation; only the density iterates.
package dft

import (
	"fmt"

	"github.com/diffqc/diffqc/internal/linop"
	"github.com/diffqc/diffqc/internal/tensor"
)

// System describes a molecular system: composition, electron count, and the
// construction of its Hamiltonian.
type System interface {
	// AtomicNumbers returns the nuclear charges.
	AtomicNumbers() []int
	// Coordinates returns the nuclear positions as an (natoms, 3) tensor,
	// or nil when the system was built from position-free integral tables.
	Coordinates() *tensor.Tensor
	// NumElectrons returns the total electron count.
	NumElectrons() int
	// NuclearRepulsion returns the fixed nucleus-nucleus energy.
	NuclearRepulsion() float64
	// NumBasis returns the basis-set size.
	NumBasis() int
	// BuildHamilton constructs the system's Hamiltonian over a backend.
	BuildHamilton(backend tensor.Backend) (Hamilton, error)
}

// Hamilton produces the operators of a calculation. Overlap and Core are
// fixed; Fock depends on the current density matrix.
type Hamilton interface {
	// Overlap returns the basis overlap as a self-adjoint LinearOperator.
	Overlap() linop.LinearOperator
	// Core returns the fixed one-electron Hamiltonian as a self-adjoint
	// LinearOperator.
	Core() linop.LinearOperator
	// Fock builds the effective one-electron operator for the given
	// density matrix, as a lazy LinearOperator.
	Fock(dm *tensor.Tensor) (linop.LinearOperator, error)
	// ElectronicEnergy evaluates the electronic energy of a density matrix
	// as a 0-D tensor. The evaluation runs through the backend, so with a
	// recording tape it is differentiable with respect to dm's ancestry.
	ElectronicEnergy(dm *tensor.Tensor) *tensor.Tensor
}

// XC is an exchange-correlation functional evaluated pointwise on a grid
// density.
type XC interface {
	// Name identifies the functional.
	Name() string
	// EnergyDensity returns the per-particle energy density at each grid
	// point, evaluated through the backend (differentiable).
	EnergyDensity(rho *tensor.Tensor) *tensor.Tensor
	// Potential returns the functional derivative d(rho*eps)/d(rho) at
	// each grid point.
	Potential(rho *tensor.Tensor) *tensor.Tensor
}

// Grid provides quadrature points and weights covering the integration
// domain.
type Grid interface {
	// Points returns the quadrature points, shape (npoints, 3).
	Points() *tensor.Tensor
	// Weights returns the quadrature weights, shape (npoints).
	Weights() *tensor.Tensor
}

// DensityFitter maps a density matrix to its fitted Coulomb matrix through
// a factorized electron-repulsion representation.
type DensityFitter interface {
	// FitCoulomb returns the Coulomb matrix of dm.
	FitCoulomb(dm *tensor.Tensor) *tensor.Tensor
}

// IntegralSystemConfig collects the tables an IntegralSystem is built from.
type IntegralSystemConfig struct {
	AtomicNumbers []int
	// Coordinates holds the nuclear positions, shape (natoms, 3). Optional:
	// the energy expressions consume only the integral tables.
	Coordinates      *tensor.Tensor
	NumElectrons     int
	NuclearRepulsion float64
	// Overlap and Core are (n, n) matrices over the basis.
	Overlap *tensor.Tensor
	Core    *tensor.Tensor
	// ERI is the flat 4-index electron-repulsion tensor in chemist
	// notation: ERI[((i*n+j)*n+k)*n+l] = (ij|kl).
	ERI []float64
	// XC selects a functional; nil means Hartree-Fock exchange.
	XC XC
	// Grid and Basis supply the quadrature for XC evaluation; required
	// when XC is set.
	Grid  Grid
	Basis []GaussianShell
	// UseDensityFitting routes Coulomb builds through a Cholesky
	// factorization of the repulsion map.
	UseDensityFitting bool
}

// IntegralSystem is a System built from precomputed integral tables.
type IntegralSystem struct {
	cfg IntegralSystemConfig
	n   int
}

// NewIntegralSystem validates the tables and wraps them as a System.
func NewIntegralSystem(cfg IntegralSystemConfig) (*IntegralSystem, error) {
	if cfg.Overlap == nil || cfg.Core == nil {
		return nil, fmt.Errorf("dft: overlap and core matrices are required")
	}
	s := cfg.Overlap.Shape()
	if len(s) != 2 || s[0] != s[1] {
		return nil, fmt.Errorf("dft: overlap must be square, got %v", s)
	}
	n := s[0]
	if !cfg.Core.Shape().Equal(tensor.Shape{n, n}) {
		return nil, fmt.Errorf("dft: core shape %v does not match basis size %d", cfg.Core.Shape(), n)
	}
	if len(cfg.ERI) != n*n*n*n {
		return nil, fmt.Errorf("dft: ERI length %d, want %d", len(cfg.ERI), n*n*n*n)
	}
	if cfg.NumElectrons <= 0 {
		return nil, fmt.Errorf("dft: positive electron count required, got %d", cfg.NumElectrons)
	}
	if cfg.Coordinates != nil {
		cs := cfg.Coordinates.Shape()
		if len(cs) != 2 || cs[0] != len(cfg.AtomicNumbers) || cs[1] != 3 {
			return nil, fmt.Errorf("dft: coordinates of shape (%d, 3) required, got %v", len(cfg.AtomicNumbers), cs)
		}
	}
	if cfg.XC != nil {
		if cfg.Grid == nil || len(cfg.Basis) != n {
			return nil, fmt.Errorf("dft: XC functionals require a grid and %d basis shells", n)
		}
	}
	return &IntegralSystem{cfg: cfg, n: n}, nil
}

// AtomicNumbers returns the nuclear charges.
func (s *IntegralSystem) AtomicNumbers() []int { return s.cfg.AtomicNumbers }

// Coordinates returns the nuclear positions, or nil if none were supplied.
func (s *IntegralSystem) Coordinates() *tensor.Tensor { return s.cfg.Coordinates }

// NumElectrons returns the total electron count.
func (s *IntegralSystem) NumElectrons() int { return s.cfg.NumElectrons }

// NuclearRepulsion returns the nucleus-nucleus energy.
func (s *IntegralSystem) NuclearRepulsion() float64 { return s.cfg.NuclearRepulsion }

// NumBasis returns the basis-set size.
func (s *IntegralSystem) NumBasis() int { return s.n }

// BuildHamilton constructs the Hamiltonian over the given backend.
func (s *IntegralSystem) BuildHamilton(backend tensor.Backend) (Hamilton, error) {
	return newHamilton(s, backend)
}
