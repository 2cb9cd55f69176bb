package dft

import (
	"math"

	"github.com/diffqc/diffqc/internal/tensor"
)

// GaussianShell is a contracted s-type Gaussian basis function: a fixed
// linear combination of normalized primitives sharing one center.
type GaussianShell struct {
	Center    [3]float64
	Exponents []float64
	Coeffs    []float64
}

// Eval evaluates the shell at a point. Each primitive carries the standard
// s-normalization (2a/pi)^(3/4).
func (s GaussianShell) Eval(x, y, z float64) float64 {
	dx := x - s.Center[0]
	dy := y - s.Center[1]
	dz := z - s.Center[2]
	r2 := dx*dx + dy*dy + dz*dz
	v := 0.0
	for i, a := range s.Exponents {
		norm := math.Pow(2*a/math.Pi, 0.75)
		v += s.Coeffs[i] * norm * math.Exp(-a*r2)
	}
	return v
}

// BasisOnGrid tabulates every shell on the grid, returning a
// (npoints, nshells) matrix.
func BasisOnGrid(shells []GaussianShell, grid Grid) *tensor.Tensor {
	pts := grid.Points()
	npts := pts.Shape()[0]
	phi := tensor.MustNew(tensor.Shape{npts, len(shells)}, tensor.Float64)
	for g := 0; g < npts; g++ {
		x, y, z := pts.At(g, 0), pts.At(g, 1), pts.At(g, 2)
		for i, sh := range shells {
			phi.SetAt(sh.Eval(x, y, z), g, i)
		}
	}
	return phi
}
