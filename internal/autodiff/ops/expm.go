package ops

import "github.com/diffqc/diffqc/internal/tensor"

// ExpmOp represents the matrix exponential: output = expm(a).
//
// Backward uses the adjoint of the Frechet derivative, computed with the
// block-augmented exponential
//
//	expm([[A^T, Gbar], [0, A^T]]) = [[expm(A^T), L*(A, Gbar)], [0, expm(A^T)]]
//
// whose upper-right block is the gradient with respect to a.
type ExpmOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewExpmOp creates a new ExpmOp.
func NewExpmOp(a, output *tensor.Tensor) *ExpmOp {
	return &ExpmOp{inputs: []*tensor.Tensor{a}, output: output}
}

// Backward computes the Frechet-adjoint gradient.
func (op *ExpmOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	a := op.inputs[0]
	n := a.Shape()[0]
	at := backend.Transpose(a)

	block := tensor.Zeros(tensor.Shape{2 * n, 2 * n})
	bd := block.Float64s()
	atd, gd := at.Float64s(), outputGrad.Float64s()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			bd[i*2*n+j] = atd[i*n+j]
			bd[i*2*n+n+j] = gd[i*n+j]
			bd[(n+i)*2*n+n+j] = atd[i*n+j]
		}
	}

	expBlock := backend.Expm(block)
	grad := tensor.Zeros(tensor.Shape{n, n})
	ed, rd := expBlock.Float64s(), grad.Float64s()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			rd[i*n+j] = ed[i*2*n+n+j]
		}
	}
	return []*tensor.Tensor{grad}
}

// Inputs returns the input tensor [a].
func (op *ExpmOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the exponential of a.
func (op *ExpmOp) Output() *tensor.Tensor { return op.output }
