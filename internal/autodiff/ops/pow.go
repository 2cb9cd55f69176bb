package ops

import "github.com/diffqc/diffqc/internal/tensor"

// PowOp represents an elementwise constant power: output = a^p.
//
// Backward: d(a^p)/da = p * a^(p-1).
type PowOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
	p      float64
}

// NewPowOp creates a new PowOp.
func NewPowOp(a, output *tensor.Tensor, p float64) *PowOp {
	return &PowOp{inputs: []*tensor.Tensor{a}, output: output, p: p}
}

// Backward returns [grad * p * a^(p-1)].
func (op *PowOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	a := op.inputs[0]
	deriv := backend.Scale(op.p, backend.Pow(a, op.p-1))
	return []*tensor.Tensor{backend.Mul(outputGrad, deriv)}
}

// Inputs returns the input tensor [a].
func (op *PowOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor.
func (op *PowOp) Output() *tensor.Tensor { return op.output }
