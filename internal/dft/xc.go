package dft

import (
	"math"

	"github.com/diffqc/diffqc/internal/tensor"
)

// ldaExchangeConstant is Cx = -(3/4) (3/pi)^(1/3), the Dirac exchange
// prefactor for a closed-shell density.
var ldaExchangeConstant = -0.75 * math.Cbrt(3/math.Pi)

// LDAExchange is the local density approximation to exchange:
// eps(rho) = Cx rho^(1/3). Evaluation runs through the backend so the
// energy density participates in gradient computation.
type LDAExchange struct {
	backend tensor.Backend
}

// NewLDAExchange creates the LDA exchange functional over a backend.
func NewLDAExchange(backend tensor.Backend) *LDAExchange {
	return &LDAExchange{backend: backend}
}

// Name identifies the functional.
func (x *LDAExchange) Name() string { return "lda_x" }

// EnergyDensity returns Cx rho^(1/3) per grid point.
func (x *LDAExchange) EnergyDensity(rho *tensor.Tensor) *tensor.Tensor {
	return x.backend.Scale(ldaExchangeConstant, x.backend.Pow(rho, 1.0/3.0))
}

// Potential returns d(rho eps)/d(rho) = (4/3) Cx rho^(1/3) per grid point.
func (x *LDAExchange) Potential(rho *tensor.Tensor) *tensor.Tensor {
	return x.backend.Scale(4.0/3.0*ldaExchangeConstant, x.backend.Pow(rho, 1.0/3.0))
}
