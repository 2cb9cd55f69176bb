package ops

import "github.com/diffqc/diffqc/internal/tensor"

// TransposeOp represents a 2-D transpose: output = a^T.
//
// The backend returns a new tensor for the transpose, so the operation must
// be recorded for gradients to reach the original input.
type TransposeOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewTransposeOp creates a new TransposeOp.
func NewTransposeOp(a, output *tensor.Tensor) *TransposeOp {
	return &TransposeOp{inputs: []*tensor.Tensor{a}, output: output}
}

// Backward transposes the output gradient back.
func (op *TransposeOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.Transpose(outputGrad)}
}

// Inputs returns the input tensor [a].
func (op *TransposeOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor.
func (op *TransposeOp) Output() *tensor.Tensor { return op.output }
