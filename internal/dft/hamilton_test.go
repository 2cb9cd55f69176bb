package dft_test

import (
	"math"
	"testing"

	"github.com/diffqc/diffqc/internal/autodiff"
	"github.com/diffqc/diffqc/internal/backend/cpu"
	"github.com/diffqc/diffqc/internal/dft"
	"github.com/diffqc/diffqc/internal/tensor"
)

func h2Hamilton(t *testing.T) (dft.Hamilton, *autodiff.Backend[*cpu.Backend]) {
	t.Helper()
	sys, err := dft.NewIntegralSystem(h2Config())
	if err != nil {
		t.Fatal(err)
	}
	engine := autodiff.New(cpu.New())
	ham, err := sys.BuildHamilton(engine)
	if err != nil {
		t.Fatal(err)
	}
	return ham, engine
}

func TestHamilton_FockAtZeroDensityIsCore(t *testing.T) {
	ham, _ := h2Hamilton(t)
	fock, err := ham.Fock(tensor.Zeros(tensor.Shape{2, 2}))
	if err != nil {
		t.Fatal(err)
	}
	fd, err := fock.ToDense()
	if err != nil {
		t.Fatal(err)
	}
	cd, err := ham.Core().ToDense()
	if err != nil {
		t.Fatal(err)
	}
	if !fd.AllClose(cd, 1e-14) {
		t.Errorf("Fock(0) = %v, want core %v", fd.Float64s(), cd.Float64s())
	}
}

func TestHamilton_FockIsLazyHermitianSum(t *testing.T) {
	ham, engine := h2Hamilton(t)
	dm, _ := tensor.FromSlice([]float64{1.2, 0.4, 0.4, 0.9}, tensor.Shape{2, 2})
	fock, err := ham.Fock(dm)
	if err != nil {
		t.Fatal(err)
	}
	if !fock.IsHermitian() {
		t.Error("Fock operator not hermitian")
	}
	// Action agrees with the materialized matrix.
	fd, err := fock.ToDense()
	if err != nil {
		t.Fatal(err)
	}
	v, _ := tensor.FromSlice([]float64{1, -1}, tensor.Shape{2})
	col := engine.Reshape(v, tensor.Shape{2, 1})
	want := engine.Reshape(engine.MatMul(fd, col), tensor.Shape{2})
	if !fock.MatVec(v).AllClose(want, 1e-12) {
		t.Error("lazy Fock action disagrees with its dense form")
	}
}

func TestHamilton_FockRejectsWrongShape(t *testing.T) {
	ham, _ := h2Hamilton(t)
	if _, err := ham.Fock(tensor.Zeros(tensor.Shape{3, 3})); err == nil {
		t.Error("expected shape error")
	}
}

// TestHamilton_EnergyAgainstManualContraction reproduces the textbook energy
// expression E = sum(D*H) + 1/2 sum(D*J) - 1/4 sum(D*K) element by element.
func TestHamilton_EnergyAgainstManualContraction(t *testing.T) {
	ham, _ := h2Hamilton(t)
	dm, _ := tensor.FromSlice([]float64{0.8, 0.3, 0.3, 0.6}, tensor.Shape{2, 2})

	eri := h2ERI()
	core := []float64{h2H11, h2H12, h2H12, h2H11}
	d := dm.Float64s()

	want := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want += d[i*2+j] * core[i*2+j]
			for k := 0; k < 2; k++ {
				for l := 0; l < 2; l++ {
					coul := eri[((i*2+j)*2+k)*2+l]
					exch := eri[((i*2+k)*2+j)*2+l]
					want += 0.5 * d[i*2+j] * d[k*2+l] * coul
					want -= 0.25 * d[i*2+j] * d[k*2+l] * exch
				}
			}
		}
	}

	got := ham.ElectronicEnergy(dm).Item()
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("ElectronicEnergy = %.12f, manual contraction = %.12f", got, want)
	}
}

func TestCholeskyFitter_MatchesDirectContraction(t *testing.T) {
	b := cpu.New()
	// Synthetic positive definite repulsion map over a 2-function basis.
	l0, _ := tensor.FromSlice([]float64{
		2, 0, 0, 0,
		0.5, 1.5, 0, 0,
		-0.3, 0.2, 1.2, 0,
		0.1, -0.4, 0.6, 0.9,
	}, tensor.Shape{4, 4})
	m := b.MatMul(l0, b.Transpose(l0))

	fitter, err := dft.NewCholeskyFitter(m, b)
	if err != nil {
		t.Fatal(err)
	}

	dm, _ := tensor.FromSlice([]float64{1.1, 0.2, 0.2, 0.7}, tensor.Shape{2, 2})
	got := fitter.FitCoulomb(dm)

	vec := b.Reshape(dm, tensor.Shape{4, 1})
	want := b.Reshape(b.MatMul(m, vec), tensor.Shape{2, 2})
	if !got.AllClose(want, 1e-10) {
		t.Errorf("fitted J = %v, direct = %v", got.Float64s(), want.Float64s())
	}
}

func TestCholeskyFitter_RejectsBadMaps(t *testing.T) {
	b := cpu.New()
	if _, err := dft.NewCholeskyFitter(tensor.Zeros(tensor.Shape{3, 4}), b); err == nil {
		t.Error("expected error for a non-square map")
	}
	if _, err := dft.NewCholeskyFitter(tensor.Eye(3), b); err == nil {
		t.Error("expected error for a non-square-dimension map")
	}
	// Indefinite map fails the factorization.
	bad, _ := tensor.FromSlice([]float64{
		1, 0, 0, 2,
		0, 1, 0, 0,
		0, 0, 1, 0,
		2, 0, 0, 1,
	}, tensor.Shape{4, 4})
	if _, err := dft.NewCholeskyFitter(bad, b); err == nil {
		t.Error("expected error for an indefinite map")
	}
}

func TestUniformGrid_IntegratesGaussian(t *testing.T) {
	grid := dft.NewUniformGrid([3]float64{-6, -6, -6}, [3]float64{6, 6, 6}, [3]int{30, 30, 30})
	shell := sto3gH(0)
	phi := dft.BasisOnGrid([]dft.GaussianShell{shell}, grid)

	// A normalized contracted shell integrates |phi|^2 to about one.
	w := grid.Weights().Float64s()
	total := 0.0
	for g, v := range phi.Float64s() {
		total += w[g] * v * v
	}
	if math.Abs(total-1) > 5e-3 {
		t.Errorf("grid norm of STO-3G 1s = %.6f, want about 1", total)
	}
}
