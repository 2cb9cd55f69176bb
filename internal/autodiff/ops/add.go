package ops

import "github.com/diffqc/diffqc/internal/tensor"

// AddOp represents elementwise addition: output = a + b.
//
// Backward: d(a+b)/da = d(a+b)/db = 1, so the output gradient flows to both
// inputs unchanged.
type AddOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewAddOp creates a new AddOp.
func NewAddOp(a, b, output *tensor.Tensor) *AddOp {
	return &AddOp{inputs: []*tensor.Tensor{a, b}, output: output}
}

// Backward returns the output gradient for both inputs.
func (op *AddOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{outputGrad, outputGrad}
}

// Inputs returns the input tensors [a, b].
func (op *AddOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor.
func (op *AddOp) Output() *tensor.Tensor { return op.output }
