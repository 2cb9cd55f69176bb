package ops

import "github.com/diffqc/diffqc/internal/tensor"

// SubOp represents elementwise subtraction: output = a - b.
type SubOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewSubOp creates a new SubOp.
func NewSubOp(a, b, output *tensor.Tensor) *SubOp {
	return &SubOp{inputs: []*tensor.Tensor{a, b}, output: output}
}

// Backward returns [grad, -grad].
func (op *SubOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{outputGrad, backend.Scale(-1, outputGrad)}
}

// Inputs returns the input tensors [a, b].
func (op *SubOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor.
func (op *SubOp) Output() *tensor.Tensor { return op.output }
