package linop

import (
	"errors"
	"fmt"
)

// ErrNotMaterializable reports that an operator has no feasible dense form.
// Implicit operators above their materialization cap return an error
// wrapping this sentinel from ToDense.
var ErrNotMaterializable = errors.New("linop: operator cannot be materialized")

// ShapeMismatchError reports incompatible operand shapes in a combinator.
// It is raised at construction time, never at call time.
type ShapeMismatchError struct {
	Op     string // Combinator name ("Add", "Matmul", ...)
	A, B   [2]int // Operand shapes
	Reason string
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("linop: %s: incompatible shapes %dx%d and %dx%d: %s",
		e.Op, e.A[0], e.A[1], e.B[0], e.B[1], e.Reason)
}
