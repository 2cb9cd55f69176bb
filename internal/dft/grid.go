package dft

import "github.com/diffqc/diffqc/internal/tensor"

// UniformGrid is a rectangular box quadrature with cell-centered points and
// uniform weights equal to the cell volume. Crude next to an atom-centered
// Becke grid, but adequate for compact densities when the box covers the
// density's support.
type UniformGrid struct {
	points  *tensor.Tensor
	weights *tensor.Tensor
}

// NewUniformGrid builds a grid over the box [min, max] with npts cells per
// axis.
func NewUniformGrid(min, max [3]float64, npts [3]int) *UniformGrid {
	total := npts[0] * npts[1] * npts[2]
	points := tensor.MustNew(tensor.Shape{total, 3}, tensor.Float64)

	var step [3]float64
	vol := 1.0
	for d := 0; d < 3; d++ {
		step[d] = (max[d] - min[d]) / float64(npts[d])
		vol *= step[d]
	}

	idx := 0
	for i := 0; i < npts[0]; i++ {
		x := min[0] + (float64(i)+0.5)*step[0]
		for j := 0; j < npts[1]; j++ {
			y := min[1] + (float64(j)+0.5)*step[1]
			for k := 0; k < npts[2]; k++ {
				z := min[2] + (float64(k)+0.5)*step[2]
				points.SetAt(x, idx, 0)
				points.SetAt(y, idx, 1)
				points.SetAt(z, idx, 2)
				idx++
			}
		}
	}

	return &UniformGrid{points: points, weights: tensor.Full(tensor.Shape{total}, vol)}
}

// Points returns the quadrature points, shape (npoints, 3).
func (g *UniformGrid) Points() *tensor.Tensor { return g.points }

// Weights returns the quadrature weights, shape (npoints).
func (g *UniformGrid) Weights() *tensor.Tensor { return g.weights }
