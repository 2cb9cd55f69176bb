package ops

import "github.com/diffqc/diffqc/internal/tensor"

// ReshapeOp represents a shape change with identical element order.
//
// Without recording it, gradients computed for the reshaped tensor would
// never reach the original parameter tensor.
type ReshapeOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(a, output *tensor.Tensor) *ReshapeOp {
	return &ReshapeOp{inputs: []*tensor.Tensor{a}, output: output}
}

// Backward reshapes the gradient back to the input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.Reshape(outputGrad, op.inputs[0].Shape())}
}

// Inputs returns the input tensor [a].
func (op *ReshapeOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the reshaped output tensor.
func (op *ReshapeOp) Output() *tensor.Tensor { return op.output }
