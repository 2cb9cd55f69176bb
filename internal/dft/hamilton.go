package dft

import (
	"fmt"

	"github.com/diffqc/diffqc/internal/linop"
	"github.com/diffqc/diffqc/internal/tensor"
)

// hamilton evaluates operators and energies from integral tables.
//
// The four-index repulsion tensor is materialized as two (n^2, n^2) maps so
// that both contractions are single matrix products:
//
//	coulomb[i*n+j, k*n+l]  = (ij|kl)   =>  J = reshape(coulomb @ vec(D))
//	exchange[i*n+j, k*n+l] = (ik|jl)   =>  K = reshape(exchange @ vec(D))
//
// Keeping the contractions as matrix products means ElectronicEnergy is a
// pure composition of recorded primitives and differentiates without any
// Hamiltonian-specific backward rule.
type hamilton struct {
	backend tensor.Backend
	n       int

	core    *tensor.Tensor
	overlap *tensor.Tensor
	coreOp  linop.LinearOperator
	ovlpOp  linop.LinearOperator

	coulomb  *tensor.Tensor
	exchange *tensor.Tensor // nil under a pure density functional
	fitter   DensityFitter

	xc      XC
	weights *tensor.Tensor
	phi     *tensor.Tensor // (npoints, n) basis values on the grid
}

func newHamilton(s *IntegralSystem, backend tensor.Backend) (*hamilton, error) {
	n := s.n
	h := &hamilton{
		backend: backend,
		n:       n,
		core:    s.cfg.Core.Clone(),
		overlap: s.cfg.Overlap.Clone(),
		xc:      s.cfg.XC,
	}

	var err error
	h.coreOp, err = linop.FromDense(h.core, true, backend)
	if err != nil {
		return nil, err
	}
	h.ovlpOp, err = linop.FromDense(h.overlap, true, backend)
	if err != nil {
		return nil, err
	}

	h.coulomb = tensor.MustNew(tensor.Shape{n * n, n * n}, tensor.Float64)
	cdata := h.coulomb.Float64s()
	copy(cdata, s.cfg.ERI)

	if h.xc == nil {
		// Hartree-Fock exchange contracts the middle indices.
		h.exchange = tensor.MustNew(tensor.Shape{n * n, n * n}, tensor.Float64)
		xdata := h.exchange.Float64s()
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				for k := 0; k < n; k++ {
					for l := 0; l < n; l++ {
						xdata[(i*n+j)*n*n+k*n+l] = s.cfg.ERI[((i*n+k)*n+j)*n+l]
					}
				}
			}
		}
	} else {
		h.weights = s.cfg.Grid.Weights().Clone()
		h.phi = BasisOnGrid(s.cfg.Basis, s.cfg.Grid)
	}

	if s.cfg.UseDensityFitting {
		h.fitter, err = NewCholeskyFitter(h.coulomb, backend)
		if err != nil {
			return nil, fmt.Errorf("dft: density fitting: %w", err)
		}
	}

	return h, nil
}

// Overlap returns the basis overlap operator.
func (h *hamilton) Overlap() linop.LinearOperator { return h.ovlpOp }

// Core returns the one-electron Hamiltonian operator.
func (h *hamilton) Core() linop.LinearOperator { return h.coreOp }

// coulombMatrix contracts the repulsion map with the density.
func (h *hamilton) coulombMatrix(dm *tensor.Tensor) *tensor.Tensor {
	if h.fitter != nil {
		return h.fitter.FitCoulomb(dm)
	}
	vec := h.backend.Reshape(dm, tensor.Shape{h.n * h.n, 1})
	return h.backend.Reshape(h.backend.MatMul(h.coulomb, vec), tensor.Shape{h.n, h.n})
}

func (h *hamilton) exchangeMatrix(dm *tensor.Tensor) *tensor.Tensor {
	vec := h.backend.Reshape(dm, tensor.Shape{h.n * h.n, 1})
	return h.backend.Reshape(h.backend.MatMul(h.exchange, vec), tensor.Shape{h.n, h.n})
}

// gridDensity evaluates the electron density at every grid point:
// rho_g = sum_ij phi_gi D_ij phi_gj.
func (h *hamilton) gridDensity(dm *tensor.Tensor) *tensor.Tensor {
	m := h.backend.MatMul(h.phi, dm)
	return h.backend.SumDim(h.backend.Mul(m, h.phi), 1)
}

// xcPotentialMatrix quadratures the functional derivative back into the
// basis: V_ij = sum_g w_g v(rho_g) phi_gi phi_gj.
func (h *hamilton) xcPotentialMatrix(dm *tensor.Tensor) *tensor.Tensor {
	rho := h.gridDensity(dm)
	v := h.xc.Potential(rho)
	npts := h.phi.Shape()[0]
	scaled := tensor.MustNew(tensor.Shape{npts, h.n}, tensor.Float64)
	for g := 0; g < npts; g++ {
		wv := h.weights.At(g) * v.At(g)
		for i := 0; i < h.n; i++ {
			scaled.SetAt(wv*h.phi.At(g, i), g, i)
		}
	}
	return h.backend.MatMul(h.backend.Transpose(h.phi), scaled)
}

// Fock assembles the effective operator for the given density matrix as a
// lazy sum: the fixed core operator plus the density-dependent potential.
func (h *hamilton) Fock(dm *tensor.Tensor) (linop.LinearOperator, error) {
	if !dm.Shape().Equal(tensor.Shape{h.n, h.n}) {
		return nil, fmt.Errorf("dft: Fock: density matrix of shape (%d, %d) required, got %v", h.n, h.n, dm.Shape())
	}
	veff := h.coulombMatrix(dm)
	if h.xc == nil {
		veff = h.backend.Sub(veff, h.backend.Scale(0.5, h.exchangeMatrix(dm)))
	} else {
		veff = h.backend.Add(veff, h.xcPotentialMatrix(dm))
	}
	veffOp, err := linop.FromDense(veff, true, h.backend)
	if err != nil {
		return nil, err
	}
	return linop.Add(h.coreOp, veffOp, h.backend)
}

// ElectronicEnergy evaluates
//
//	E = sum(D*Hcore) + 1/2 sum(D*J) + { -1/4 sum(D*K)  (Hartree-Fock)
//	                                  {  sum_g w_g rho_g eps(rho_g)  (XC)
//
// entirely through the backend, so the result is taped when recording.
func (h *hamilton) ElectronicEnergy(dm *tensor.Tensor) *tensor.Tensor {
	b := h.backend
	e := b.Sum(b.Mul(dm, h.core))
	e = b.Add(e, b.Scale(0.5, b.Sum(b.Mul(dm, h.coulombMatrix(dm)))))
	if h.xc == nil {
		e = b.Add(e, b.Scale(-0.25, b.Sum(b.Mul(dm, h.exchangeMatrix(dm)))))
		return e
	}
	rho := h.gridDensity(dm)
	eps := h.xc.EnergyDensity(rho)
	exc := b.Sum(b.Mul(h.weights, b.Mul(rho, eps)))
	return b.Add(e, exc)
}
