package orb

import (
	"fmt"

	"github.com/diffqc/diffqc/internal/tensor"
)

// QROrbParams parameterizes orthonormal coefficients through a thin QR
// factorization: the parameter tensor is read as an arbitrary
// (nbasis, norb) matrix and Coeffs returns (optionally whitened) Q.
//
// The backend's QR kernel is sign-fixed and falls back to a stable
// orthonormal factor for rank-deficient parameters, so the forward map is
// total. Because the factorization of a matrix with orthonormal columns is
// that matrix itself, SetCoeffs followed by Coeffs is exact.
//
// Editable path: "params" (for the "coeffs" method).
type QROrbParams struct {
	params   *tensor.Tensor
	whitener *tensor.Tensor // S^(-1/2), nil for an orthonormal basis
	backend  tensor.Backend
	nbasis   int
	norb     int
}

// NewQROrbParams creates a QR parameterization for norb orbitals over
// nbasis basis functions. whitener may be nil. The initial parameter matrix
// is the leading identity block, a valid orthonormal starting point.
func NewQROrbParams(nbasis, norb int, whitener *tensor.Tensor, backend tensor.Backend) (*QROrbParams, error) {
	if norb <= 0 || norb > nbasis {
		return nil, fmt.Errorf("orb: need 0 < norb <= nbasis, got norb=%d nbasis=%d", norb, nbasis)
	}
	if err := checkWhitener(whitener, nbasis); err != nil {
		return nil, err
	}
	params := tensor.Zeros(tensor.Shape{nbasis, norb})
	for j := 0; j < norb; j++ {
		params.SetAt(1, j, j)
	}
	return &QROrbParams{params: params, whitener: whitener, backend: backend, nbasis: nbasis, norb: norb}, nil
}

// Coeffs maps the parameters to orthonormal coefficients.
func (p *QROrbParams) Coeffs() *tensor.Tensor {
	q, _ := p.backend.QR(p.params)
	if p.whitener == nil {
		return q
	}
	return p.backend.MatMul(p.whitener, q)
}

// SetCoeffs inverts the map: params = W^(-1) c (or c itself when no
// whitener is set).
func (p *QROrbParams) SetCoeffs(c *tensor.Tensor) error {
	if err := checkCoeffs(c, p.nbasis, p.norb); err != nil {
		return err
	}
	if p.whitener == nil {
		p.params = c.Clone()
		return nil
	}
	p.params = p.backend.Solve(p.whitener, c)
	return nil
}

// Params returns the current parameter tensor.
func (p *QROrbParams) Params() *tensor.Tensor { return p.params }

// NumBasis returns the number of basis functions.
func (p *QROrbParams) NumBasis() int { return p.nbasis }

// NumOrb returns the number of orbitals.
func (p *QROrbParams) NumOrb() int { return p.norb }

// ParamNames declares the editable paths for each method.
func (p *QROrbParams) ParamNames(method string) []string {
	switch method {
	case "coeffs":
		return []string{"params"}
	default:
		return nil
	}
}

// Attr implements attr.Object.
func (p *QROrbParams) Attr(name string) (any, error) {
	switch name {
	case "params":
		return p.params, nil
	default:
		return nil, fmt.Errorf("no attribute %q", name)
	}
}

// SetAttr implements attr.Object.
func (p *QROrbParams) SetAttr(name string, value any) error {
	switch name {
	case "params":
		t, ok := value.(*tensor.Tensor)
		if !ok {
			return fmt.Errorf("attribute %q requires a tensor, got %T", name, value)
		}
		if !t.Shape().Equal(tensor.Shape{p.nbasis, p.norb}) {
			return fmt.Errorf("attribute %q requires shape %v, got %v", name, tensor.Shape{p.nbasis, p.norb}, t.Shape())
		}
		p.params = t
		return nil
	default:
		return fmt.Errorf("no attribute %q", name)
	}
}

// DelAttr implements attr.Object. Parameters are structural and cannot be
// deleted.
func (p *QROrbParams) DelAttr(name string) error {
	return fmt.Errorf("attribute %q cannot be deleted", name)
}
