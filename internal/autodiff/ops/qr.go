package ops

import "github.com/diffqc/diffqc/internal/tensor"

// QROp represents the thin QR factorization a = q r, recorded with q as its
// differentiable output. r is kept for the backward pass; gradients with
// respect to r itself do not flow (the orbital maps consume only q).
//
// Backward (m >= n, full rank), for a gradient Qbar on q:
//
//	X = Q^T Qbar
//	K = tril(X - X^T, -1)
//	Abar = (Qbar + Q (K - X)) R^{-T}
//
// which is the standard thin-QR adjoint with the R term dropped.
type QROp struct {
	inputs []*tensor.Tensor
	q, r   *tensor.Tensor
}

// NewQROp creates a new QROp.
func NewQROp(a, q, r *tensor.Tensor) *QROp {
	return &QROp{inputs: []*tensor.Tensor{a}, q: q, r: r}
}

// Backward computes the gradient with respect to the factorized matrix.
func (op *QROp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	q, r := op.q, op.r
	n := q.Shape()[1]

	x := backend.MatMul(backend.Transpose(q), outputGrad)
	skew := backend.Sub(x, backend.Transpose(x))

	// K = strictly lower triangle of (X - X^T).
	k := tensor.Zeros(tensor.Shape{n, n})
	kd, sd := k.Float64s(), skew.Float64s()
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			kd[i*n+j] = sd[i*n+j]
		}
	}

	w := backend.Add(outputGrad, backend.MatMul(q, backend.Sub(k, x)))

	// Abar = W R^{-T}  <=>  R Abar^T = W^T.
	gradT := backend.Solve(stabilized(r), backend.Transpose(w))
	return []*tensor.Tensor{backend.Transpose(gradT)}
}

// stabilized nudges near-zero diagonal entries of r so the triangular solve
// stays finite when the forward pass went through the rank-deficient
// fallback. Full-rank inputs are returned unchanged.
func stabilized(r *tensor.Tensor) *tensor.Tensor {
	n := r.Shape()[0]
	rd := r.Float64s()
	const eps = 1e-12
	needsFix := false
	for j := 0; j < n; j++ {
		if d := rd[j*n+j]; d < eps && d > -eps {
			needsFix = true
			break
		}
	}
	if !needsFix {
		return r
	}
	fixed := r.Clone()
	fd := fixed.Float64s()
	for j := 0; j < n; j++ {
		if d := fd[j*n+j]; d < eps && d > -eps {
			fd[j*n+j] = eps
		}
	}
	return fixed
}

// Inputs returns the factorized tensor [a].
func (op *QROp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the orthonormal factor q.
func (op *QROp) Output() *tensor.Tensor { return op.q }
