// Package editable defines the contract for modules whose differentiable
// behavior is fully determined by a declared subset of their internal state,
// located through attribute paths.
//
// A module declares, per context key (usually a method name), the paths of
// the tensors its output depends on. The differentiation driver fetches
// those tensors, evaluates the module's output through a taped backend, and
// reads the gradients back off the tape. Module authors never write
// backward rules; they only keep the declaration honest: outputs used in
// gradient computation must depend on nothing mutable outside the declared
// paths and the explicit call inputs.
package editable

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/diffqc/diffqc/internal/attr"
	"github.com/diffqc/diffqc/internal/autodiff"
	"github.com/diffqc/diffqc/internal/tensor"
)

// Module is an object with declared editable parameters.
type Module interface {
	attr.Object

	// ParamNames returns the attribute paths of the parameters the output
	// of the named method depends on. The same module may expose different
	// subsets for different methods.
	ParamNames(method string) []string
}

// NonDifferentiableParameterError reports a declared path whose value
// cannot participate in gradient computation.
type NonDifferentiableParameterError struct {
	Path  string
	Value any
}

// Error implements the error interface.
func (e *NonDifferentiableParameterError) Error() string {
	return fmt.Sprintf("editable: parameter at %q has non-differentiable value of type %T", e.Path, e.Value)
}

// AssertParams validates a module's declaration for the given method: every
// declared path must resolve to a floating-point tensor, and no path may be
// declared twice.
func AssertParams(m Module, method string) error {
	names := m.ParamNames(method)
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return fmt.Errorf("editable: duplicate parameter path %q for method %q", sorted[i], method)
		}
	}
	_, err := Params(m, method)
	return err
}

// Params fetches the current values at the module's declared paths, in
// declaration order. Values must be float64 tensors; anything else raises
// *NonDifferentiableParameterError, and unresolvable paths surface the
// accessor's *attr.PathResolutionError.
func Params(m Module, method string) ([]*tensor.Tensor, error) {
	names := m.ParamNames(method)
	params := make([]*tensor.Tensor, len(names))
	for i, name := range names {
		v, err := attr.Get(m, name)
		if err != nil {
			return nil, err
		}
		t, ok := v.(*tensor.Tensor)
		if !ok || t.DType() != tensor.Float64 {
			return nil, &NonDifferentiableParameterError{Path: name, Value: v}
		}
		params[i] = t
	}
	return params, nil
}

// SetParams writes values back to the module's declared paths, in
// declaration order.
func SetParams(m Module, method string, values []*tensor.Tensor) error {
	names := m.ParamNames(method)
	if len(values) != len(names) {
		return fmt.Errorf("editable: %d values for %d declared parameters", len(values), len(names))
	}
	for i, name := range names {
		if err := attr.Set(m, name, values[i]); err != nil {
			return err
		}
	}
	return nil
}

// Gradients computes d(output)/d(param) for every declared parameter of the
// given method.
//
// fn must evaluate the module's method through the engine's taped backend
// and return a scalar tensor. The tape is cleared, recording is enabled for
// the duration of fn, and the reverse pass maps accumulated gradients back
// to the declared paths. Parameters the output does not touch get a zero
// gradient of the parameter's shape.
//
// This is the fixed-point boundary used for implicit differentiation: only
// the declared parameters and the single evaluation of fn are on the tape,
// never an iteration trajectory.
func Gradients(m Module, method string, fn func() *tensor.Tensor, engine autodiff.Engine) (map[string]*tensor.Tensor, error) {
	params, err := Params(m, method)
	if err != nil {
		return nil, err
	}

	tape := engine.GetTape()
	tape.Clear()
	tape.StartRecording()
	out := fn()
	tape.StopRecording()

	if out == nil || out.NumElements() != 1 {
		return nil, fmt.Errorf("editable: method %q must produce a scalar output", method)
	}

	// Seed the reverse pass on fn's returned tensor rather than on the
	// final taped operation; the two differ when fn tapes work after
	// producing its output.
	grads := tape.BackwardFrom(out, tensor.Ones(out.Shape()), engine)

	names := m.ParamNames(method)
	result := make(map[string]*tensor.Tensor, len(names))
	for i, name := range names {
		if g, ok := grads[params[i]]; ok {
			result[name] = g
		} else {
			result[name] = tensor.Zeros(params[i].Shape())
		}
	}
	return result, nil
}
