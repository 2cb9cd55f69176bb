package tensor_test

import (
	"testing"

	"github.com/diffqc/diffqc/internal/tensor"
)

func TestNew_RejectsNegativeDim(t *testing.T) {
	_, err := tensor.New(tensor.Shape{2, -1}, tensor.Float64)
	if err == nil {
		t.Fatal("expected error for negative dimension")
	}
}

func TestFromSlice_LengthMismatch(t *testing.T) {
	_, err := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{2, 2})
	if err == nil {
		t.Fatal("expected error for length/shape mismatch")
	}
}

func TestEye_Identity(t *testing.T) {
	e := tensor.Eye(3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if got := e.At(i, j); got != want {
				t.Errorf("Eye(3)[%d,%d] = %f, want %f", i, j, got, want)
			}
		}
	}
}

func TestScalar_Item(t *testing.T) {
	s := tensor.Scalar(3.5)
	if s.NumElements() != 1 {
		t.Fatalf("scalar has %d elements", s.NumElements())
	}
	if s.Item() != 3.5 {
		t.Errorf("Item() = %f, want 3.5", s.Item())
	}
}

func TestClone_Independent(t *testing.T) {
	a, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := a.Clone()
	b.SetAt(99, 0, 0)
	if a.At(0, 0) != 1 {
		t.Error("Clone shares backing storage with original")
	}
	if a == b {
		t.Error("Clone returned the same pointer")
	}
}

func TestDense_SharesStorage(t *testing.T) {
	a, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	d := a.Dense()
	d.Set(1, 1, 42)
	if a.At(1, 1) != 42 {
		t.Error("Dense view does not share storage")
	}
}

func TestAllClose(t *testing.T) {
	a, _ := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2})
	b, _ := tensor.FromSlice([]float64{1 + 1e-12, 2 - 1e-12}, tensor.Shape{2})
	c, _ := tensor.FromSlice([]float64{1, 3}, tensor.Shape{2})
	if !a.AllClose(b, 1e-9) {
		t.Error("nearly equal tensors not close")
	}
	if a.AllClose(c, 1e-9) {
		t.Error("distinct tensors reported close")
	}
	d, _ := tensor.FromSlice([]float64{1, 2}, tensor.Shape{1, 2})
	if a.AllClose(d, 1e-9) {
		t.Error("different shapes reported close")
	}
}
