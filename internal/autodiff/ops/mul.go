package ops

import "github.com/diffqc/diffqc/internal/tensor"

// MulOp represents elementwise multiplication: output = a * b.
//
// Backward: d(a*b)/da = b and d(a*b)/db = a.
type MulOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewMulOp creates a new MulOp.
func NewMulOp(a, b, output *tensor.Tensor) *MulOp {
	return &MulOp{inputs: []*tensor.Tensor{a, b}, output: output}
}

// Backward returns [grad*b, grad*a].
func (op *MulOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.Tensor{backend.Mul(outputGrad, b), backend.Mul(outputGrad, a)}
}

// Inputs returns the input tensors [a, b].
func (op *MulOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor.
func (op *MulOp) Output() *tensor.Tensor { return op.output }
