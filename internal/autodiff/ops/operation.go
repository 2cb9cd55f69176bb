// Package ops defines the differentiable operations recorded on the
// gradient tape, one file per operation.
//
// Each operation captures its input and output tensors during the forward
// pass and computes input gradients from the output gradient during the
// backward pass. Backward rules call back into a tensor.Backend for their
// own linear algebra; the tape disables recording while they run.
package ops

import "github.com/diffqc/diffqc/internal/tensor"

// Operation is one differentiable step in the recorded computation.
type Operation interface {
	// Backward computes gradients for the inputs given the output gradient.
	// The returned slice is index-aligned with Inputs(); a nil entry means
	// no gradient flows to that input.
	Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor

	// Inputs returns the input tensors of this operation.
	Inputs() []*tensor.Tensor

	// Output returns the tensor produced by this operation.
	Output() *tensor.Tensor
}
