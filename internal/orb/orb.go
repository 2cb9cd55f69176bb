// Package orb implements differentiable maps from unconstrained parameter
// tensors to orthonormal orbital coefficient matrices.
//
// Both parameterizations guarantee orthonormality structurally, for any
// parameter value, rather than checking it after the fact: the QR map
// returns the orthonormal factor of the parameter matrix, and the
// matrix-exponential map rotates a fixed orthonormal reference by the
// exponential of a skew-symmetric generator. With a non-orthogonal basis,
// an overlap whitener W = S^(-1/2) converts plain orthonormality into
// S-metric orthonormality: (W q)^T S (W q) = q^T q = I.
//
// Both types are editable modules whose forward map runs through the
// backend, so the differentiation driver in package editable covers them
// without module-level backward rules.
package orb

import (
	"fmt"

	"github.com/diffqc/diffqc/internal/editable"
	"github.com/diffqc/diffqc/internal/tensor"
)

// Parameterization is an orthonormal orbital parameterization: an editable
// module with a forward map to coefficients and an inverse map from them.
type Parameterization interface {
	editable.Module

	// Coeffs maps the current parameters to an orthonormal coefficient
	// matrix of shape (nbasis, norb).
	Coeffs() *tensor.Tensor

	// SetCoeffs inverts the map: after it returns, Coeffs reproduces c.
	// c must have shape (nbasis, norb) and orthonormal columns (in the
	// whitener's metric when one is set).
	SetCoeffs(c *tensor.Tensor) error

	// NumBasis returns the number of basis functions (rows of Coeffs).
	NumBasis() int

	// NumOrb returns the number of orbitals (columns of Coeffs).
	NumOrb() int
}

func checkCoeffs(c *tensor.Tensor, nbasis, norb int) error {
	s := c.Shape()
	if len(s) != 2 || s[0] != nbasis || s[1] != norb {
		return fmt.Errorf("orb: coefficients of shape (%d, %d) required, got %v", nbasis, norb, s)
	}
	return nil
}

func checkWhitener(w *tensor.Tensor, nbasis int) error {
	if w == nil {
		return nil
	}
	s := w.Shape()
	if len(s) != 2 || s[0] != nbasis || s[1] != nbasis {
		return fmt.Errorf("orb: whitener of shape (%d, %d) required, got %v", nbasis, nbasis, s)
	}
	return nil
}
