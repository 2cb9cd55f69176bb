// Copyright 2026 The diffqc Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package editable provides the public API for modules with declared
// differentiable parameters.
//
// A module declares, per method, the attribute paths its output depends on;
// the Gradients driver evaluates the method through a taped backend and
// maps the gradients back to those paths.
package editable

import (
	"github.com/diffqc/diffqc/internal/autodiff"
	"github.com/diffqc/diffqc/internal/editable"
	"github.com/diffqc/diffqc/internal/tensor"
)

// Module is an object with declared editable parameters.
type Module = editable.Module

// NonDifferentiableParameterError reports a declared path whose value cannot
// participate in gradient computation.
type NonDifferentiableParameterError = editable.NonDifferentiableParameterError

// AssertParams validates a module's parameter declaration for a method.
func AssertParams(m Module, method string) error { return editable.AssertParams(m, method) }

// Params fetches the current values at the module's declared paths.
func Params(m Module, method string) ([]*tensor.Tensor, error) {
	return editable.Params(m, method)
}

// SetParams writes values back to the module's declared paths.
func SetParams(m Module, method string, values []*tensor.Tensor) error {
	return editable.SetParams(m, method, values)
}

// Gradients computes d(output)/d(param) for every declared parameter of the
// given method. fn must evaluate the method through the engine's taped
// backend and return a scalar tensor.
func Gradients(m Module, method string, fn func() *tensor.Tensor, engine autodiff.Engine) (map[string]*tensor.Tensor, error) {
	return editable.Gradients(m, method, fn, engine)
}
