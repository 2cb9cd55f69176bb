// Package cpu implements the tensor.Backend kernel surface on top of gonum.
//
// Dense linear algebra (matrix products, QR, symmetric eigensolves, linear
// solves) is delegated to gonum/mat; elementwise kernels are plain loops.
// Everything runs single-threaded and synchronously.
package cpu

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/diffqc/diffqc/internal/tensor"
)

// rankTol is the relative threshold below which an R diagonal entry marks
// the input as rank deficient and the QR kernel falls back to the SVD
// orthonormal factor.
const rankTol = 1e-12

// Backend is the gonum CPU implementation of tensor.Backend.
type Backend struct{}

// New creates a new CPU backend.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "CPU(gonum)"
}

// Add performs elementwise addition.
func (b *Backend) Add(a, c *tensor.Tensor) *tensor.Tensor {
	return elementwise("Add", a, c, func(x, y float64) float64 { return x + y })
}

// Sub performs elementwise subtraction.
func (b *Backend) Sub(a, c *tensor.Tensor) *tensor.Tensor {
	return elementwise("Sub", a, c, func(x, y float64) float64 { return x - y })
}

// Mul performs elementwise multiplication.
func (b *Backend) Mul(a, c *tensor.Tensor) *tensor.Tensor {
	return elementwise("Mul", a, c, func(x, y float64) float64 { return x * y })
}

func elementwise(op string, a, c *tensor.Tensor, f func(x, y float64) float64) *tensor.Tensor {
	if !a.Shape().Equal(c.Shape()) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, a.Shape(), c.Shape()))
	}
	out := tensor.MustNew(a.Shape(), tensor.Float64)
	ad, cd, od := a.Float64s(), c.Float64s(), out.Float64s()
	for i := range od {
		od[i] = f(ad[i], cd[i])
	}
	return out
}

// Scale multiplies every element by the constant c.
func (b *Backend) Scale(c float64, a *tensor.Tensor) *tensor.Tensor {
	out := tensor.MustNew(a.Shape(), tensor.Float64)
	ad, od := a.Float64s(), out.Float64s()
	for i := range od {
		od[i] = c * ad[i]
	}
	return out
}

// Pow raises every element to the constant power p.
func (b *Backend) Pow(a *tensor.Tensor, p float64) *tensor.Tensor {
	out := tensor.MustNew(a.Shape(), tensor.Float64)
	ad, od := a.Float64s(), out.Float64s()
	for i := range od {
		od[i] = math.Pow(ad[i], p)
	}
	return out
}

// MatMul performs 2-D matrix multiplication via gonum.
func (b *Backend) MatMul(a, c *tensor.Tensor) *tensor.Tensor {
	as, cs := a.Shape(), c.Shape()
	if len(as) != 2 || len(cs) != 2 {
		panic(fmt.Sprintf("MatMul: 2-D tensors required, got %v and %v", as, cs))
	}
	if as[1] != cs[0] {
		panic(fmt.Sprintf("MatMul: inner dimensions differ, %v x %v", as, cs))
	}
	out := tensor.MustNew(tensor.Shape{as[0], cs[1]}, tensor.Float64)
	out.Dense().Mul(a.Dense(), c.Dense())
	return out
}

// Transpose transposes a 2-D tensor.
func (b *Backend) Transpose(a *tensor.Tensor) *tensor.Tensor {
	as := a.Shape()
	if len(as) != 2 {
		panic(fmt.Sprintf("Transpose: 2-D tensor required, got %v", as))
	}
	out := tensor.MustNew(tensor.Shape{as[1], as[0]}, tensor.Float64)
	ad, od := a.Float64s(), out.Float64s()
	for i := 0; i < as[0]; i++ {
		for j := 0; j < as[1]; j++ {
			od[j*as[0]+i] = ad[i*as[1]+j]
		}
	}
	return out
}

// Sum reduces to a 0-D scalar.
func (b *Backend) Sum(a *tensor.Tensor) *tensor.Tensor {
	total := 0.0
	for _, v := range a.Float64s() {
		total += v
	}
	return tensor.Scalar(total)
}

// SumDim sums a 2-D tensor along dim, producing a 1-D tensor.
func (b *Backend) SumDim(a *tensor.Tensor, dim int) *tensor.Tensor {
	as := a.Shape()
	if len(as) != 2 || dim < 0 || dim > 1 {
		panic(fmt.Sprintf("SumDim: 2-D tensor and dim in {0,1} required, got %v dim %d", as, dim))
	}
	rows, cols := as[0], as[1]
	ad := a.Float64s()
	if dim == 0 {
		out := tensor.Zeros(tensor.Shape{cols})
		od := out.Float64s()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				od[j] += ad[i*cols+j]
			}
		}
		return out
	}
	out := tensor.Zeros(tensor.Shape{rows})
	od := out.Float64s()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			od[i] += ad[i*cols+j]
		}
	}
	return out
}

// Reshape returns a copy with a new shape and identical element order.
func (b *Backend) Reshape(a *tensor.Tensor, shape tensor.Shape) *tensor.Tensor {
	if shape.NumElements() != a.NumElements() {
		panic(fmt.Sprintf("Reshape: cannot reshape %v into %v", a.Shape(), shape))
	}
	out := tensor.MustNew(shape, tensor.Float64)
	copy(out.Float64s(), a.Float64s())
	return out
}

// QR computes the sign-fixed thin QR factorization of an m-by-n tensor,
// m >= n. The diagonal of R is made non-negative by flipping column signs,
// so factorizing a matrix with orthonormal columns returns that matrix
// itself with R = I. Rank-deficient inputs fall back to the SVD polar
// factor, which stays orthonormal for any rank.
func (b *Backend) QR(a *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor) {
	as := a.Shape()
	if len(as) != 2 || as[0] < as[1] {
		panic(fmt.Sprintf("QR: m-by-n tensor with m >= n required, got %v", as))
	}
	m, n := as[0], as[1]

	var qr mat.QR
	qr.Factorize(a.Dense())
	var qFull, rFull mat.Dense
	qr.QTo(&qFull)
	qr.RTo(&rFull)

	q := tensor.FromDense(qFull.Slice(0, m, 0, n))
	r := tensor.FromDense(rFull.Slice(0, n, 0, n))

	// Sign fix: non-negative R diagonal.
	qd, rd := q.Float64s(), r.Float64s()
	for j := 0; j < n; j++ {
		if rd[j*n+j] < 0 {
			for i := 0; i < m; i++ {
				qd[i*n+j] = -qd[i*n+j]
			}
			for k := j; k < n; k++ {
				rd[j*n+k] = -rd[j*n+k]
			}
		}
	}

	maxDiag := 0.0
	for j := 0; j < n; j++ {
		if d := math.Abs(rd[j*n+j]); d > maxDiag {
			maxDiag = d
		}
	}
	for j := 0; j < n; j++ {
		if math.Abs(rd[j*n+j]) <= rankTol*maxDiag || maxDiag == 0 {
			return b.polarFallback(a)
		}
	}
	return q, r
}

// polarFallback builds an orthonormal factor from the thin SVD: with
// a = U S V^T the factor q = U V^T has orthonormal columns for any rank,
// and r = V S V^T keeps q*r == a.
func (b *Backend) polarFallback(a *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor) {
	var svd mat.SVD
	if ok := svd.Factorize(a.Dense(), mat.SVDThin); !ok {
		panic("QR: SVD fallback failed to factorize")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	vals := svd.Values(nil)

	var q mat.Dense
	q.Mul(&u, v.T())

	n := len(vals)
	vs := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			vs.Set(i, j, v.At(i, j)*vals[j])
		}
	}
	var r mat.Dense
	r.Mul(vs, v.T())
	return tensor.FromDense(&q), tensor.FromDense(&r)
}

// Expm computes the matrix exponential by scaling and squaring with a
// truncated series. The argument is scaled until its 1-norm is at most 1/2,
// so the series converges to machine precision in a few dozen terms.
func (b *Backend) Expm(a *tensor.Tensor) *tensor.Tensor {
	as := a.Shape()
	if len(as) != 2 || as[0] != as[1] {
		panic(fmt.Sprintf("Expm: square tensor required, got %v", as))
	}
	n := as[0]

	norm := onenorm(a)
	s := 0
	for scale := norm; scale > 0.5; scale /= 2 {
		s++
	}

	x := mat.NewDense(n, n, nil)
	x.Scale(1/math.Pow(2, float64(s)), a.Dense())

	// exp(x) = I + x + x^2/2! + ...
	result := eye(n)
	term := eye(n)
	for k := 1; k <= 40; k++ {
		var next mat.Dense
		next.Mul(term, x)
		next.Scale(1/float64(k), &next)
		term = &next
		result.Add(result, term)
		if mat.Norm(term, 1) < 1e-18 {
			break
		}
	}

	for i := 0; i < s; i++ {
		var sq mat.Dense
		sq.Mul(result, result)
		result = &sq
	}
	return tensor.FromDense(result)
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func onenorm(a *tensor.Tensor) float64 {
	s := a.Shape()
	ad := a.Float64s()
	norm := 0.0
	for j := 0; j < s[1]; j++ {
		col := 0.0
		for i := 0; i < s[0]; i++ {
			col += math.Abs(ad[i*s[1]+j])
		}
		if col > norm {
			norm = col
		}
	}
	return norm
}

// SymEig computes eigenvalues (ascending) and eigenvectors of a symmetric
// matrix. The input is symmetrized before factorization to absorb roundoff.
func (b *Backend) SymEig(a *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor) {
	sym := symmetrize(a)
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		panic("SymEig: eigendecomposition failed")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	vals := eig.Values(nil)

	valsT, err := tensor.FromSlice(vals, tensor.Shape{len(vals)})
	if err != nil {
		panic(err)
	}
	return valsT, tensor.FromDense(&vecs)
}

// Solve solves a x = b for x.
func (b *Backend) Solve(a, c *tensor.Tensor) *tensor.Tensor {
	var x mat.Dense
	if err := x.Solve(a.Dense(), c.Dense()); err != nil {
		panic(fmt.Sprintf("Solve: %v", err))
	}
	return tensor.FromDense(&x)
}

// SqrtmInvSym computes s^(-1/2) of a symmetric positive definite matrix via
// its eigendecomposition.
func (b *Backend) SqrtmInvSym(a *tensor.Tensor) *tensor.Tensor {
	sym := symmetrize(a)
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		panic("SqrtmInvSym: eigendecomposition failed")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	vals := eig.Values(nil)

	n := len(vals)
	scaled := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		if vals[j] <= 0 {
			panic(fmt.Sprintf("SqrtmInvSym: matrix not positive definite (eigenvalue %g)", vals[j]))
		}
		inv := 1 / math.Sqrt(vals[j])
		for i := 0; i < n; i++ {
			scaled.Set(i, j, vecs.At(i, j)*inv)
		}
	}
	var out mat.Dense
	out.Mul(scaled, vecs.T())
	return tensor.FromDense(&out)
}

// CholeskyFactor returns the lower Cholesky factor of a symmetric positive
// definite matrix.
func (b *Backend) CholeskyFactor(a *tensor.Tensor) (*tensor.Tensor, error) {
	sym := symmetrize(a)
	var ch mat.Cholesky
	if ok := ch.Factorize(sym); !ok {
		return nil, fmt.Errorf("cholesky: matrix of shape %v is not positive definite", a.Shape())
	}
	var l mat.TriDense
	ch.LTo(&l)
	return tensor.FromDense(&l), nil
}

func symmetrize(a *tensor.Tensor) *mat.SymDense {
	as := a.Shape()
	if len(as) != 2 || as[0] != as[1] {
		panic(fmt.Sprintf("symmetric kernel: square tensor required, got %v", as))
	}
	n := as[0]
	ad := a.Float64s()
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			data[i*n+j] = 0.5 * (ad[i*n+j] + ad[j*n+i])
		}
	}
	return mat.NewSymDense(n, data)
}
