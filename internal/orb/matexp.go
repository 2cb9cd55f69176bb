package orb

import (
	"fmt"

	"github.com/diffqc/diffqc/internal/tensor"
)

// MatExpOrbParams parameterizes orthonormal coefficients through a matrix
// exponential: the parameter tensor x is projected onto the skew-symmetric
// generator g = x - x^T, and Coeffs returns (optionally whitened)
// expm(g) @ reference. The exponential of a skew matrix is orthogonal, so
// orthonormality of the fixed reference is preserved for any parameter
// value; Coeffs at x = 0 is exactly the (whitened) reference.
//
// The inverse map re-bases: a matrix logarithm of a rectangular rotation is
// not well defined, so SetCoeffs assigns the target as the new reference
// and zeroes the generator, which reproduces the target exactly.
//
// Editable paths: "params" and "reference" (for the "coeffs" method).
type MatExpOrbParams struct {
	params    *tensor.Tensor // (nbasis, nbasis) unconstrained generator source
	reference *tensor.Tensor // (nbasis, norb), orthonormal columns
	whitener  *tensor.Tensor
	backend   tensor.Backend
	nbasis    int
	norb      int
}

// NewMatExpOrbParams creates a matrix-exponential parameterization around
// the given orthonormal reference. whitener may be nil. Parameters start at
// zero, the identity rotation.
func NewMatExpOrbParams(reference *tensor.Tensor, whitener *tensor.Tensor, backend tensor.Backend) (*MatExpOrbParams, error) {
	s := reference.Shape()
	if len(s) != 2 || s[1] > s[0] {
		return nil, fmt.Errorf("orb: reference of shape (nbasis, norb) with norb <= nbasis required, got %v", s)
	}
	if err := checkWhitener(whitener, s[0]); err != nil {
		return nil, err
	}
	return &MatExpOrbParams{
		params:    tensor.Zeros(tensor.Shape{s[0], s[0]}),
		reference: reference.Clone(),
		whitener:  whitener,
		backend:   backend,
		nbasis:    s[0],
		norb:      s[1],
	}, nil
}

// Coeffs maps the parameters to orthonormal coefficients.
func (p *MatExpOrbParams) Coeffs() *tensor.Tensor {
	gen := p.backend.Sub(p.params, p.backend.Transpose(p.params))
	rot := p.backend.Expm(gen)
	c := p.backend.MatMul(rot, p.reference)
	if p.whitener == nil {
		return c
	}
	return p.backend.MatMul(p.whitener, c)
}

// SetCoeffs re-bases the parameterization on c: reference = W^(-1) c and a
// zero generator.
func (p *MatExpOrbParams) SetCoeffs(c *tensor.Tensor) error {
	if err := checkCoeffs(c, p.nbasis, p.norb); err != nil {
		return err
	}
	if p.whitener == nil {
		p.reference = c.Clone()
	} else {
		p.reference = p.backend.Solve(p.whitener, c)
	}
	p.params = tensor.Zeros(tensor.Shape{p.nbasis, p.nbasis})
	return nil
}

// Params returns the current parameter tensor.
func (p *MatExpOrbParams) Params() *tensor.Tensor { return p.params }

// Reference returns the current reference orbital matrix.
func (p *MatExpOrbParams) Reference() *tensor.Tensor { return p.reference }

// NumBasis returns the number of basis functions.
func (p *MatExpOrbParams) NumBasis() int { return p.nbasis }

// NumOrb returns the number of orbitals.
func (p *MatExpOrbParams) NumOrb() int { return p.norb }

// ParamNames declares the editable paths for each method.
func (p *MatExpOrbParams) ParamNames(method string) []string {
	switch method {
	case "coeffs":
		return []string{"params", "reference"}
	default:
		return nil
	}
}

// Attr implements attr.Object.
func (p *MatExpOrbParams) Attr(name string) (any, error) {
	switch name {
	case "params":
		return p.params, nil
	case "reference":
		return p.reference, nil
	default:
		return nil, fmt.Errorf("no attribute %q", name)
	}
}

// SetAttr implements attr.Object.
func (p *MatExpOrbParams) SetAttr(name string, value any) error {
	t, ok := value.(*tensor.Tensor)
	if !ok {
		return fmt.Errorf("attribute %q requires a tensor, got %T", name, value)
	}
	switch name {
	case "params":
		if !t.Shape().Equal(tensor.Shape{p.nbasis, p.nbasis}) {
			return fmt.Errorf("attribute %q requires shape %v, got %v", name, tensor.Shape{p.nbasis, p.nbasis}, t.Shape())
		}
		p.params = t
		return nil
	case "reference":
		if !t.Shape().Equal(tensor.Shape{p.nbasis, p.norb}) {
			return fmt.Errorf("attribute %q requires shape %v, got %v", name, tensor.Shape{p.nbasis, p.norb}, t.Shape())
		}
		p.reference = t
		return nil
	default:
		return fmt.Errorf("no attribute %q", name)
	}
}

// DelAttr implements attr.Object.
func (p *MatExpOrbParams) DelAttr(name string) error {
	return fmt.Errorf("attribute %q cannot be deleted", name)
}
