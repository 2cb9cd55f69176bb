package dft_test

import (
	"math"
	"testing"

	"github.com/diffqc/diffqc/internal/attr"
	"github.com/diffqc/diffqc/internal/autodiff"
	"github.com/diffqc/diffqc/internal/backend/cpu"
	"github.com/diffqc/diffqc/internal/dft"
	"github.com/diffqc/diffqc/internal/tensor"
)

// H2 in the STO-3G basis at a bond length of 1.4 bohr. Integral values from
// Szabo & Ostlund, Modern Quantum Chemistry, section 3.5.2.
const (
	h2Bond   = 1.4
	h2S12    = 0.6593
	h2H11    = -1.1204
	h2H12    = -0.9584
	eri1111  = 0.7746
	eri1122  = 0.5697
	eri2111  = 0.4441
	eri2121  = 0.2970
	h2Energy = -1.1167 // converged restricted Hartree-Fock total energy
)

func h2ERI() []float64 {
	eri := make([]float64, 16)
	set := func(i, j, k, l int, v float64) {
		perms := [][4]int{
			{i, j, k, l}, {j, i, k, l}, {i, j, l, k}, {j, i, l, k},
			{k, l, i, j}, {l, k, i, j}, {k, l, j, i}, {l, k, j, i},
		}
		for _, p := range perms {
			eri[((p[0]*2+p[1])*2+p[2])*2+p[3]] = v
		}
	}
	set(0, 0, 0, 0, eri1111)
	set(1, 1, 1, 1, eri1111)
	set(0, 0, 1, 1, eri1122)
	set(1, 0, 0, 0, eri2111)
	set(0, 1, 1, 1, eri2111)
	set(1, 0, 1, 0, eri2121)
	return eri
}

func h2Config() dft.IntegralSystemConfig {
	overlap, _ := tensor.FromSlice([]float64{1, h2S12, h2S12, 1}, tensor.Shape{2, 2})
	core, _ := tensor.FromSlice([]float64{h2H11, h2H12, h2H12, h2H11}, tensor.Shape{2, 2})
	return dft.IntegralSystemConfig{
		AtomicNumbers:    []int{1, 1},
		NumElectrons:     2,
		NuclearRepulsion: 1 / h2Bond,
		Overlap:          overlap,
		Core:             core,
		ERI:              h2ERI(),
	}
}

// sto3gH is the STO-3G hydrogen 1s shell.
func sto3gH(z float64) dft.GaussianShell {
	return dft.GaussianShell{
		Center:    [3]float64{0, 0, z},
		Exponents: []float64{3.42525091, 0.62391373, 0.16885540},
		Coeffs:    []float64{0.15432897, 0.53532814, 0.44463454},
	}
}

func newH2Calc(t *testing.T, cfg dft.Config) *dft.KSCalc {
	t.Helper()
	sys, err := dft.NewIntegralSystem(h2Config())
	if err != nil {
		t.Fatal(err)
	}
	calc, err := dft.New(sys, cfg, autodiff.New(cpu.New()))
	if err != nil {
		t.Fatal(err)
	}
	return calc
}

func TestKSCalc_H2HartreeFock(t *testing.T) {
	calc := newH2Calc(t, dft.DefaultConfig())
	calc.Run()

	if calc.State() != dft.Converged {
		t.Fatalf("state = %s, want converged (iterations %d, delta %g)",
			calc.State(), calc.Iterations(), calc.LastDelta())
	}
	if calc.Iterations() < 1 || calc.Iterations() > 100 {
		t.Errorf("iterations = %d", calc.Iterations())
	}
	if math.Abs(calc.Energy()-h2Energy) > 1e-3 {
		t.Errorf("total energy = %.6f, want %.4f", calc.Energy(), h2Energy)
	}
}

func TestKSCalc_Deterministic(t *testing.T) {
	a := newH2Calc(t, dft.DefaultConfig())
	b := newH2Calc(t, dft.DefaultConfig())
	a.Run()
	b.Run()
	if a.Energy() != b.Energy() {
		t.Errorf("identical runs differ: %.15f vs %.15f", a.Energy(), b.Energy())
	}
	if a.Iterations() != b.Iterations() {
		t.Errorf("iteration counts differ: %d vs %d", a.Iterations(), b.Iterations())
	}
}

func TestKSCalc_ZeroBudgetFails(t *testing.T) {
	cfg := dft.DefaultConfig()
	cfg.MaxIter = 0
	calc := newH2Calc(t, cfg)
	calc.Run()

	if calc.State() != dft.Failed {
		t.Fatalf("state = %s, want failed", calc.State())
	}
	if calc.Iterations() != 0 {
		t.Errorf("iterations = %d, want 0", calc.Iterations())
	}
	// Terminal states are final: Run must not restart.
	calc.Run()
	if calc.State() != dft.Failed || calc.Iterations() != 0 {
		t.Error("Run restarted a terminal calculation")
	}
}

func TestKSCalc_NegativeBudgetRejected(t *testing.T) {
	sys, err := dft.NewIntegralSystem(h2Config())
	if err != nil {
		t.Fatal(err)
	}
	cfg := dft.DefaultConfig()
	cfg.MaxIter = -1
	if _, err := dft.New(sys, cfg, autodiff.New(cpu.New())); err == nil {
		t.Error("expected error for a negative iteration budget")
	}
}

func TestKSCalc_OddElectronCountRejected(t *testing.T) {
	cfg := h2Config()
	cfg.NumElectrons = 3
	sys, err := dft.NewIntegralSystem(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dft.New(sys, dft.DefaultConfig(), autodiff.New(cpu.New())); err == nil {
		t.Error("expected error for an odd electron count")
	}
}

func TestKSCalc_EnergyFromParamsMatchesConverged(t *testing.T) {
	for _, op := range []string{"qr", "matexp"} {
		t.Run(op, func(t *testing.T) {
			cfg := dft.DefaultConfig()
			cfg.OrbParams = op
			calc := newH2Calc(t, cfg)
			calc.Run()
			if calc.State() != dft.Converged {
				t.Fatalf("state = %s", calc.State())
			}
			// After re-basing, the parameterized energy reproduces the
			// converged energy exactly up to roundoff.
			e := calc.EnergyFromParams().Item()
			if math.Abs(e-calc.Energy()) > 1e-10 {
				t.Errorf("EnergyFromParams = %.12f, converged = %.12f", e, calc.Energy())
			}
		})
	}
}

func TestKSCalc_OrbParamVariantsAgree(t *testing.T) {
	qr := newH2Calc(t, dft.DefaultConfig())
	qr.Run()

	cfg := dft.DefaultConfig()
	cfg.OrbParams = "matexp"
	mx := newH2Calc(t, cfg)
	mx.Run()

	if qr.State() != dft.Converged || mx.State() != dft.Converged {
		t.Fatalf("states: qr=%s matexp=%s", qr.State(), mx.State())
	}
	if math.Abs(qr.Energy()-mx.Energy()) > 1e-8 {
		t.Errorf("parameterizations disagree: qr %.12f, matexp %.12f", qr.Energy(), mx.Energy())
	}
}

func TestKSCalc_UnknownOrbParamsRejected(t *testing.T) {
	sys, err := dft.NewIntegralSystem(h2Config())
	if err != nil {
		t.Fatal(err)
	}
	cfg := dft.DefaultConfig()
	cfg.OrbParams = "cayley"
	if _, err := dft.New(sys, cfg, autodiff.New(cpu.New())); err == nil {
		t.Error("expected error for unknown parameterization")
	}
}

func TestKSCalc_GradientsMatchFiniteDifferences(t *testing.T) {
	for _, op := range []string{"qr", "matexp"} {
		t.Run(op, func(t *testing.T) {
			cfg := dft.DefaultConfig()
			cfg.OrbParams = op
			calc := newH2Calc(t, cfg)
			calc.Run()
			if calc.State() != dft.Converged {
				t.Fatalf("state = %s", calc.State())
			}

			grads, err := calc.Gradients()
			if err != nil {
				t.Fatal(err)
			}

			for _, name := range calc.ParamNames("energy") {
				g, ok := grads[name]
				if !ok {
					t.Fatalf("no gradient for %q", name)
				}
				paramAny, err := attr.Get(calc, name)
				if err != nil {
					t.Fatal(err)
				}
				param := paramAny.(*tensor.Tensor)

				const eps = 1e-5
				data := param.Float64s()
				for i := range data {
					orig := data[i]
					data[i] = orig + eps
					fp := calc.EnergyFromParams().Item()
					data[i] = orig - eps
					fm := calc.EnergyFromParams().Item()
					data[i] = orig
					numeric := (fp - fm) / (2 * eps)
					if math.Abs(numeric-g.Float64s()[i]) > 1e-5 {
						t.Errorf("%s grad[%d]: analytic %g, numeric %g",
							name, i, g.Float64s()[i], numeric)
					}
				}
			}
		})
	}
}

func TestKSCalc_GradientsAtMinimumAreSmall(t *testing.T) {
	// The converged energy is stationary with respect to orbital rotations,
	// so every parameter gradient at the fixed point is near zero.
	cfg := dft.DefaultConfig()
	cfg.OrbParams = "matexp"
	calc := newH2Calc(t, cfg)
	calc.Run()
	if calc.State() != dft.Converged {
		t.Fatalf("state = %s", calc.State())
	}
	grads, err := calc.Gradients()
	if err != nil {
		t.Fatal(err)
	}
	g := grads["orbparams.params"]
	for i, v := range g.Float64s() {
		if math.Abs(v) > 1e-4 {
			t.Errorf("generator gradient[%d] = %g, expected near zero at the minimum", i, v)
		}
	}
}

func TestKSCalc_GradientsRequireConvergence(t *testing.T) {
	calc := newH2Calc(t, dft.DefaultConfig())
	if _, err := calc.Gradients(); err == nil {
		t.Error("expected error before Run")
	}

	cfg := dft.DefaultConfig()
	cfg.MaxIter = 0
	failed := newH2Calc(t, cfg)
	failed.Run()
	if _, err := failed.Gradients(); err == nil {
		t.Error("expected error on a failed calculation")
	}
}

func TestKSCalc_LDAExchange(t *testing.T) {
	engine := autodiff.New(cpu.New())

	cfg := h2Config()
	cfg.XC = dft.NewLDAExchange(engine)
	cfg.Grid = dft.NewUniformGrid(
		[3]float64{-5, -5, -5 - h2Bond/2},
		[3]float64{5, 5, 5 + h2Bond/2},
		[3]int{24, 24, 28},
	)
	cfg.Basis = []dft.GaussianShell{sto3gH(-h2Bond / 2), sto3gH(h2Bond / 2)}

	sys, err := dft.NewIntegralSystem(cfg)
	if err != nil {
		t.Fatal(err)
	}
	calc, err := dft.New(sys, dft.DefaultConfig(), engine)
	if err != nil {
		t.Fatal(err)
	}
	calc.Run()

	if calc.State() != dft.Converged {
		t.Fatalf("state = %s after %d iterations", calc.State(), calc.Iterations())
	}
	// LDA exchange binds H2 less tightly than exact exchange; the energy
	// must still land in the physically plausible window.
	if calc.Energy() > -0.5 || calc.Energy() < -2 {
		t.Errorf("LDA total energy = %.6f, outside plausible range", calc.Energy())
	}
	if math.Abs(calc.Energy()-h2Energy) < 1e-6 {
		t.Error("LDA energy identical to Hartree-Fock, functional not applied")
	}
}

func TestState_String(t *testing.T) {
	cases := map[dft.State]string{
		dft.Uninitialized: "uninitialized",
		dft.Converging:    "converging",
		dft.Converged:     "converged",
		dft.Failed:        "failed",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), s.String(), want)
		}
	}
}

func TestKSCalc_ParamNames(t *testing.T) {
	calc := newH2Calc(t, dft.DefaultConfig())
	names := calc.ParamNames("energy")
	if len(names) != 1 || names[0] != "orbparams.params" {
		t.Errorf("ParamNames = %v", names)
	}
	if calc.ParamNames("other") != nil {
		t.Error("unknown method should declare no parameters")
	}
}
