package cpu_test

import (
	"math"
	"testing"

	"github.com/diffqc/diffqc/internal/backend/cpu"
	"github.com/diffqc/diffqc/internal/tensor"
)

func fromSlice(t *testing.T, data []float64, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, shape)
	if err != nil {
		t.Fatal(err)
	}
	return x
}

func TestMatMul(t *testing.T) {
	b := cpu.New()
	a := fromSlice(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	x := fromSlice(t, []float64{5, 6, 7, 8}, tensor.Shape{2, 2})
	got := b.MatMul(a, x)
	want := fromSlice(t, []float64{19, 22, 43, 50}, tensor.Shape{2, 2})
	if !got.AllClose(want, 1e-12) {
		t.Errorf("MatMul = %v, want %v", got.Float64s(), want.Float64s())
	}
}

func TestSumDim(t *testing.T) {
	b := cpu.New()
	a := fromSlice(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	rows := b.SumDim(a, 1)
	wantRows := fromSlice(t, []float64{6, 15}, tensor.Shape{2})
	if !rows.AllClose(wantRows, 1e-12) {
		t.Errorf("SumDim(1) = %v, want %v", rows.Float64s(), wantRows.Float64s())
	}
	cols := b.SumDim(a, 0)
	wantCols := fromSlice(t, []float64{5, 7, 9}, tensor.Shape{3})
	if !cols.AllClose(wantCols, 1e-12) {
		t.Errorf("SumDim(0) = %v, want %v", cols.Float64s(), wantCols.Float64s())
	}
}

func checkOrthonormalColumns(t *testing.T, b tensor.Backend, q *tensor.Tensor, tol float64) {
	t.Helper()
	gram := b.MatMul(b.Transpose(q), q)
	if !gram.AllClose(tensor.Eye(q.Shape()[1]), tol) {
		t.Errorf("columns not orthonormal: Q^T Q = %v", gram.Float64s())
	}
}

func TestQR_ReconstructsInput(t *testing.T) {
	b := cpu.New()
	a := fromSlice(t, []float64{
		1, 2,
		3, 4,
		5, 6,
		7, 9,
	}, tensor.Shape{4, 2})

	q, r := b.QR(a)
	checkOrthonormalColumns(t, b, q, 1e-12)

	if !b.MatMul(q, r).AllClose(a, 1e-12) {
		t.Error("QR does not reconstruct the input")
	}
	if r.At(1, 0) != 0 {
		t.Errorf("R not upper triangular: R[1,0] = %g", r.At(1, 0))
	}
	for j := 0; j < 2; j++ {
		if r.At(j, j) < 0 {
			t.Errorf("R diagonal not sign-fixed: R[%d,%d] = %g", j, j, r.At(j, j))
		}
	}
}

func TestQR_OrthonormalInputIsFixedPoint(t *testing.T) {
	b := cpu.New()
	c := 1 / math.Sqrt2
	a := fromSlice(t, []float64{
		c, 0,
		c, 0,
		0, 1,
	}, tensor.Shape{3, 2})

	q, r := b.QR(a)
	if !q.AllClose(a, 1e-12) {
		t.Errorf("QR of orthonormal input changed it: Q = %v", q.Float64s())
	}
	if !r.AllClose(tensor.Eye(2), 1e-12) {
		t.Errorf("R of orthonormal input not identity: %v", r.Float64s())
	}
}

func TestQR_RankDeficientFallback(t *testing.T) {
	b := cpu.New()
	// Two identical columns: rank 1.
	a := fromSlice(t, []float64{
		1, 1,
		2, 2,
		3, 3,
	}, tensor.Shape{3, 2})

	q, _ := b.QR(a)
	checkOrthonormalColumns(t, b, q, 1e-10)
}

func TestExpm_Zero(t *testing.T) {
	b := cpu.New()
	if !b.Expm(tensor.Zeros(tensor.Shape{3, 3})).AllClose(tensor.Eye(3), 1e-14) {
		t.Error("expm(0) != I")
	}
}

func TestExpm_SkewIsOrthogonal(t *testing.T) {
	b := cpu.New()
	// Rotation generator: expm([[0,-h],[h,0]]) = [[cos h, -sin h],[sin h, cos h]].
	h := 0.3
	g := fromSlice(t, []float64{0, -h, h, 0}, tensor.Shape{2, 2})
	e := b.Expm(g)
	want := fromSlice(t, []float64{math.Cos(h), -math.Sin(h), math.Sin(h), math.Cos(h)}, tensor.Shape{2, 2})
	if !e.AllClose(want, 1e-12) {
		t.Errorf("expm = %v, want %v", e.Float64s(), want.Float64s())
	}
	checkOrthonormalColumns(t, b, e, 1e-12)
}

func TestExpm_LargeNormScaling(t *testing.T) {
	b := cpu.New()
	// Diagonal input exercises the squaring phase: expm(diag) = diag(exp).
	a := fromSlice(t, []float64{5, 0, 0, -3}, tensor.Shape{2, 2})
	e := b.Expm(a)
	want := fromSlice(t, []float64{math.Exp(5), 0, 0, math.Exp(-3)}, tensor.Shape{2, 2})
	if !e.AllClose(want, 1e-8) {
		t.Errorf("expm = %v, want %v", e.Float64s(), want.Float64s())
	}
}

func TestSymEig_Known(t *testing.T) {
	b := cpu.New()
	a := fromSlice(t, []float64{2, 1, 1, 2}, tensor.Shape{2, 2})
	vals, vecs := b.SymEig(a)
	if math.Abs(vals.At(0)-1) > 1e-12 || math.Abs(vals.At(1)-3) > 1e-12 {
		t.Errorf("eigenvalues = %v, want [1 3]", vals.Float64s())
	}
	// A V = V diag(vals).
	av := b.MatMul(a, vecs)
	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			if math.Abs(av.At(i, j)-vals.At(j)*vecs.At(i, j)) > 1e-12 {
				t.Fatalf("A V != V L at (%d,%d)", i, j)
			}
		}
	}
}

func TestSolve(t *testing.T) {
	b := cpu.New()
	a := fromSlice(t, []float64{3, 1, 1, 2}, tensor.Shape{2, 2})
	rhs := fromSlice(t, []float64{9, 8}, tensor.Shape{2, 1})
	x := b.Solve(a, rhs)
	if !b.MatMul(a, x).AllClose(rhs, 1e-12) {
		t.Errorf("Solve residual too large, x = %v", x.Float64s())
	}
}

func TestSqrtmInvSym(t *testing.T) {
	b := cpu.New()
	s := fromSlice(t, []float64{1, 0.6593, 0.6593, 1}, tensor.Shape{2, 2})
	w := b.SqrtmInvSym(s)
	// W S W = I.
	if !b.MatMul(w, b.MatMul(s, w)).AllClose(tensor.Eye(2), 1e-12) {
		t.Error("W S W != I")
	}
}

func TestCholeskyFactor(t *testing.T) {
	b := cpu.New()
	a := fromSlice(t, []float64{4, 2, 2, 3}, tensor.Shape{2, 2})
	l, err := b.CholeskyFactor(a)
	if err != nil {
		t.Fatal(err)
	}
	if !b.MatMul(l, b.Transpose(l)).AllClose(a, 1e-12) {
		t.Error("L L^T != A")
	}
	if l.At(0, 1) != 0 {
		t.Errorf("L not lower triangular: L[0,1] = %g", l.At(0, 1))
	}

	if _, err := b.CholeskyFactor(fromSlice(t, []float64{1, 2, 2, 1}, tensor.Shape{2, 2})); err == nil {
		t.Error("expected error for an indefinite matrix")
	}
}
