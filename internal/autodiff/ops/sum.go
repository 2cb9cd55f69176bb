package ops

import "github.com/diffqc/diffqc/internal/tensor"

// SumOp represents a full reduction to a 0-D scalar: output = sum(a).
//
// Backward: the scalar gradient broadcasts to every element of the input.
type SumOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewSumOp creates a new SumOp.
func NewSumOp(a, output *tensor.Tensor) *SumOp {
	return &SumOp{inputs: []*tensor.Tensor{a}, output: output}
}

// Backward broadcasts the scalar gradient over the input shape.
func (op *SumOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	g := backend.Scale(outputGrad.Item(), tensor.Ones(op.inputs[0].Shape()))
	return []*tensor.Tensor{g}
}

// Inputs returns the input tensor [a].
func (op *SumOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the scalar output tensor.
func (op *SumOp) Output() *tensor.Tensor { return op.output }
