package tensor

// Backend is the kernel surface every numeric implementation must provide.
//
// The first group are differentiable primitives: the autodiff decorator
// records them on its tape and supplies a backward rule for each. The second
// group are black-box solver kernels: they sit outside the gradient boundary
// (an SCF driver differentiates through its converged output, never through
// an eigensolve or linear solve), so the decorator forwards them unrecorded.
//
// Kernels never mutate their inputs and always return fresh tensors; the
// tape relies on pointer identity to route gradients.
type Backend interface {
	// Name returns the backend name, for diagnostics.
	Name() string

	// Differentiable primitives.

	// Add performs elementwise addition. Shapes must match.
	Add(a, b *Tensor) *Tensor
	// Sub performs elementwise subtraction. Shapes must match.
	Sub(a, b *Tensor) *Tensor
	// Mul performs elementwise multiplication. Shapes must match.
	Mul(a, b *Tensor) *Tensor
	// Scale multiplies every element by the constant c.
	Scale(c float64, a *Tensor) *Tensor
	// Pow raises every element to the constant power p.
	Pow(a *Tensor, p float64) *Tensor
	// MatMul performs 2-D matrix multiplication.
	MatMul(a, b *Tensor) *Tensor
	// Transpose transposes a 2-D tensor.
	Transpose(a *Tensor) *Tensor
	// Sum reduces a tensor to a 0-D scalar.
	Sum(a *Tensor) *Tensor
	// SumDim sums a 2-D tensor along dim (0 or 1), producing a 1-D tensor.
	SumDim(a *Tensor, dim int) *Tensor
	// Reshape returns a tensor with the same elements and a new shape.
	Reshape(a *Tensor, shape Shape) *Tensor
	// QR computes the sign-fixed thin QR factorization of an m-by-n tensor
	// (m >= n): Q is m-by-n with orthonormal columns, R upper triangular
	// with non-negative diagonal. Rank-deficient inputs fall back to a
	// stable orthonormal factor. Gradients flow through Q only.
	QR(a *Tensor) (q, r *Tensor)
	// Expm computes the matrix exponential of a square tensor.
	Expm(a *Tensor) *Tensor

	// Solver kernels (outside the gradient boundary).

	// SymEig computes eigenvalues (ascending) and eigenvectors of a
	// symmetric matrix.
	SymEig(a *Tensor) (vals, vecs *Tensor)
	// Solve solves the linear system a x = b for x.
	Solve(a, b *Tensor) *Tensor
	// SqrtmInvSym computes s^(-1/2) of a symmetric positive definite matrix.
	SqrtmInvSym(a *Tensor) *Tensor
	// CholeskyFactor returns the lower Cholesky factor of a symmetric
	// positive definite matrix, or an error if it is not.
	CholeskyFactor(a *Tensor) (*Tensor, error)
}
