package linop_test

import (
	"errors"
	"testing"

	"github.com/diffqc/diffqc/internal/backend/cpu"
	"github.com/diffqc/diffqc/internal/linop"
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

func denseOp(t *testing.T, b tensor.Backend, data []float64, rows, cols int, hermitian bool) linop.LinearOperator {
	t.Helper()
	op, err := linop.FromDense(fromSlice(t, data, tensor.Shape{rows, cols}), hermitian, b)
	if err != nil {
		t.Fatal(err)
	}
	return op
}

func TestFromDense_MatVec(t *testing.T) {
	b := cpu.New()
	op := denseOp(t, b, []float64{1, 2, 3, 4, 5, 6}, 2, 3, false)
	y := op.MatVec(fromSlice(t, []float64{1, 0, -1}, tensor.Shape{3}))
	want := fromSlice(t, []float64{-2, -2}, tensor.Shape{2})
	if !y.AllClose(want, 1e-12) {
		t.Errorf("MatVec = %v, want %v", y.Float64s(), want.Float64s())
	}
}

func TestFromDense_RMatVecIsTransposeAction(t *testing.T) {
	b := cpu.New()
	op := denseOp(t, b, []float64{1, 2, 3, 4, 5, 6}, 2, 3, false)
	y := op.RMatVec(fromSlice(t, []float64{1, 1}, tensor.Shape{2}))
	want := fromSlice(t, []float64{5, 7, 9}, tensor.Shape{3})
	if !y.AllClose(want, 1e-12) {
		t.Errorf("RMatVec = %v, want %v", y.Float64s(), want.Float64s())
	}
}

func TestFromDense_HermitianRequiresSquare(t *testing.T) {
	b := cpu.New()
	_, err := linop.FromDense(tensor.Zeros(tensor.Shape{2, 3}), true, b)
	var sm *linop.ShapeMismatchError
	if !errors.As(err, &sm) {
		t.Fatalf("expected *ShapeMismatchError, got %v", err)
	}
}

func TestAdd_ActionAndDense(t *testing.T) {
	b := cpu.New()
	f := denseOp(t, b, []float64{1, 0, 0, 1}, 2, 2, true)
	g := denseOp(t, b, []float64{0, 2, 2, 0}, 2, 2, true)
	sum, err := linop.Add(f, g, b)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.IsHermitian() {
		t.Error("sum of hermitian operators not hermitian")
	}
	y := sum.MatVec(fromSlice(t, []float64{1, 1}, tensor.Shape{2}))
	want := fromSlice(t, []float64{3, 3}, tensor.Shape{2})
	if !y.AllClose(want, 1e-12) {
		t.Errorf("(f+g)x = %v, want %v", y.Float64s(), want.Float64s())
	}
	d, err := sum.ToDense()
	if err != nil {
		t.Fatal(err)
	}
	if !d.AllClose(fromSlice(t, []float64{1, 2, 2, 1}, tensor.Shape{2, 2}), 1e-12) {
		t.Errorf("ToDense = %v", d.Float64s())
	}
}

func TestAdd_ShapeMismatch(t *testing.T) {
	b := cpu.New()
	f := denseOp(t, b, []float64{1, 2, 3, 4}, 2, 2, false)
	g := denseOp(t, b, []float64{1, 2, 3, 4, 5, 6}, 2, 3, false)
	if _, err := linop.Add(f, g, b); err == nil {
		t.Fatal("expected shape mismatch at construction")
	}
}

func TestScale(t *testing.T) {
	b := cpu.New()
	f := denseOp(t, b, []float64{1, 2, 3, 4}, 2, 2, false)
	y := linop.Scale(-2, f, b).MatVec(fromSlice(t, []float64{1, 1}, tensor.Shape{2}))
	want := fromSlice(t, []float64{-6, -14}, tensor.Shape{2})
	if !y.AllClose(want, 1e-12) {
		t.Errorf("(-2 f)x = %v, want %v", y.Float64s(), want.Float64s())
	}
}

func TestAdjoint_SwapsActions(t *testing.T) {
	b := cpu.New()
	f := denseOp(t, b, []float64{1, 2, 3, 4, 5, 6}, 2, 3, false)
	adj := linop.Adjoint(f, b)

	rows, cols := adj.Shape()
	if rows != 3 || cols != 2 {
		t.Fatalf("adjoint shape = (%d, %d), want (3, 2)", rows, cols)
	}

	v := fromSlice(t, []float64{1, -1}, tensor.Shape{2})
	if !adj.MatVec(v).AllClose(f.RMatVec(v), 1e-12) {
		t.Error("adjoint MatVec != forward RMatVec")
	}

	w := fromSlice(t, []float64{1, 0, 2}, tensor.Shape{3})
	if !adj.RMatVec(w).AllClose(f.MatVec(w), 1e-12) {
		t.Error("adjoint RMatVec != forward MatVec")
	}
}

func TestAdjoint_Involution(t *testing.T) {
	b := cpu.New()
	f := denseOp(t, b, []float64{1, 2, 3, 4, 5, 6}, 2, 3, false)
	twice := linop.Adjoint(linop.Adjoint(f, b), b)

	rows, cols := twice.Shape()
	if rows != 2 || cols != 3 {
		t.Fatalf("double adjoint shape = (%d, %d), want (2, 3)", rows, cols)
	}

	v := fromSlice(t, []float64{1, 0, 2}, tensor.Shape{3})
	if !twice.MatVec(v).AllClose(f.MatVec(v), 1e-12) {
		t.Error("double adjoint MatVec != original MatVec")
	}

	w := fromSlice(t, []float64{1, -1}, tensor.Shape{2})
	if !twice.RMatVec(w).AllClose(f.RMatVec(w), 1e-12) {
		t.Error("double adjoint RMatVec != original RMatVec")
	}

	dense, err := twice.ToDense()
	if err != nil {
		t.Fatal(err)
	}
	orig, err := f.ToDense()
	if err != nil {
		t.Fatal(err)
	}
	if !dense.AllClose(orig, 1e-12) {
		t.Error("double adjoint ToDense != original")
	}
}

func TestMatmul_Composition(t *testing.T) {
	b := cpu.New()
	f := denseOp(t, b, []float64{1, 2, 3, 4}, 2, 2, false)
	g := denseOp(t, b, []float64{0, 1, 1, 0}, 2, 2, false)
	prod, err := linop.Matmul(f, g, b)
	if err != nil {
		t.Fatal(err)
	}
	v := fromSlice(t, []float64{2, 5}, tensor.Shape{2})
	got := prod.MatVec(v)
	want := f.MatVec(g.MatVec(v))
	if !got.AllClose(want, 1e-12) {
		t.Errorf("(fg)x = %v, want f(gx) = %v", got.Float64s(), want.Float64s())
	}
}

func TestMatmul_InnerDimMismatch(t *testing.T) {
	b := cpu.New()
	f := denseOp(t, b, []float64{1, 2, 3, 4, 5, 6}, 2, 3, false)
	g := denseOp(t, b, []float64{1, 2, 3, 4}, 2, 2, false)
	if _, err := linop.Matmul(f, g, b); err == nil {
		t.Fatal("expected inner dimension mismatch at construction")
	}
}

func TestFromFunc_MaterializesByColumns(t *testing.T) {
	b := cpu.New()
	// Implicit diagonal operator.
	diag := []float64{2, 3, 5}
	fwd := func(v *tensor.Tensor) *tensor.Tensor {
		out := tensor.Zeros(tensor.Shape{3})
		for i, d := range diag {
			out.Float64s()[i] = d * v.Float64s()[i]
		}
		return out
	}
	op, err := linop.FromFunc(3, 3, fwd, nil, true, b)
	if err != nil {
		t.Fatal(err)
	}
	d, err := op.ToDense()
	if err != nil {
		t.Fatal(err)
	}
	want := fromSlice(t, []float64{2, 0, 0, 0, 3, 0, 0, 0, 5}, tensor.Shape{3, 3})
	if !d.AllClose(want, 1e-12) {
		t.Errorf("ToDense = %v, want %v", d.Float64s(), want.Float64s())
	}
}

func TestFromFunc_DenseCapExceeded(t *testing.T) {
	b := cpu.New()
	n := 1 << 9 // n*n elements is past the materialization cap
	fwd := func(v *tensor.Tensor) *tensor.Tensor { return v.Clone() }
	op, err := linop.FromFunc(n, n, fwd, nil, true, b)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := op.ToDense(); !errors.Is(err, linop.ErrNotMaterializable) {
		t.Fatalf("expected ErrNotMaterializable, got %v", err)
	}
}

func TestSharedOperandGraph(t *testing.T) {
	b := cpu.New()
	f := denseOp(t, b, []float64{1, 1, 0, 1}, 2, 2, false)
	// f appears in two composites; both must see the same action.
	twoF := linop.Scale(2, f, b)
	sum, err := linop.Add(f, twoF, b)
	if err != nil {
		t.Fatal(err)
	}
	v := fromSlice(t, []float64{1, 2}, tensor.Shape{2})
	want := fromSlice(t, []float64{9, 6}, tensor.Shape{2})
	if !sum.MatVec(v).AllClose(want, 1e-12) {
		t.Errorf("(f + 2f)x = %v, want %v", sum.MatVec(v).Float64s(), want.Float64s())
	}
}
