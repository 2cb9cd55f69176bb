package autodiff

import (
	"fmt"

	"github.com/diffqc/diffqc/internal/tensor"
)

// Engine is a backend that supports a backward pass. Backend implements it;
// drivers that need to differentiate accept an Engine rather than a concrete
// decorator so tests can substitute instrumented backends.
type Engine interface {
	tensor.Backend
	// GetTape returns the gradient tape for backward computation.
	GetTape() *GradientTape
}

// Backward computes gradients of t with respect to every recorded input.
//
// The output gradient is seeded with ones of t's shape, so for a scalar t
// the returned map holds plain derivatives d t / d input.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	y := backend.Mul(x, x)
//	grads := autodiff.Backward(y, backend)
//	grad := grads[x]
func Backward(t *tensor.Tensor, backend Engine) map[*tensor.Tensor]*tensor.Tensor {
	tape := backend.GetTape()
	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}
	if t.DType() != tensor.Float64 {
		panic(fmt.Sprintf("backward: unsupported dtype %s (only float64 supported)", t.DType()))
	}
	return tape.BackwardFrom(t, tensor.Ones(t.Shape()), backend)
}
