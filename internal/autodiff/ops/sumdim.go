package ops

import "github.com/diffqc/diffqc/internal/tensor"

// SumDimOp represents a 2-D reduction along one dimension.
//
// Backward: the reduced gradient broadcasts back along the summed dimension.
type SumDimOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
	dim    int
}

// NewSumDimOp creates a new SumDimOp.
func NewSumDimOp(a, output *tensor.Tensor, dim int) *SumDimOp {
	return &SumDimOp{inputs: []*tensor.Tensor{a}, output: output, dim: dim}
}

// Backward broadcasts the 1-D gradient back over the summed dimension.
func (op *SumDimOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	in := op.inputs[0]
	rows, cols := in.Shape()[0], in.Shape()[1]
	grad := tensor.Zeros(tensor.Shape{rows, cols})
	gd, od := grad.Float64s(), outputGrad.Float64s()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if op.dim == 0 {
				gd[i*cols+j] = od[j]
			} else {
				gd[i*cols+j] = od[i]
			}
		}
	}
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor [a].
func (op *SumDimOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the 1-D output tensor.
func (op *SumDimOp) Output() *tensor.Tensor { return op.output }
