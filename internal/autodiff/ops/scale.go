package ops

import "github.com/diffqc/diffqc/internal/tensor"

// ScaleOp represents multiplication by a constant: output = c * a.
// The constant is not a differentiable input.
type ScaleOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
	c      float64
}

// NewScaleOp creates a new ScaleOp.
func NewScaleOp(c float64, a, output *tensor.Tensor) *ScaleOp {
	return &ScaleOp{inputs: []*tensor.Tensor{a}, output: output, c: c}
}

// Backward returns [c * grad].
func (op *ScaleOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.Scale(op.c, outputGrad)}
}

// Inputs returns the input tensor [a].
func (op *ScaleOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor.
func (op *ScaleOp) Output() *tensor.Tensor { return op.output }
