package dft

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/diffqc/diffqc/internal/autodiff"
	"github.com/diffqc/diffqc/internal/editable"
	"github.com/diffqc/diffqc/internal/orb"
	"github.com/diffqc/diffqc/internal/tensor"
)

// State is the lifecycle phase of a KSCalc.
type State int

const (
	// Uninitialized means Run has not been called.
	Uninitialized State = iota
	// Converging means the self-consistent loop is in progress.
	Converging
	// Converged is terminal: the loop met the tolerance and the orbital
	// parameterization has been re-based on the converged coefficients.
	Converged
	// Failed is terminal: the loop exhausted its iteration budget or the
	// energy left the finite range. Partial results stay inspectable.
	Failed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Converging:
		return "converging"
	case Converged:
		return "converged"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config controls a self-consistent calculation.
type Config struct {
	// Tol is the convergence threshold on |E_i - E_(i-1)|. Zero selects
	// the default 1e-8.
	Tol float64
	// MaxIter is the iteration budget, taken literally: a budget of zero
	// fails immediately with zero iterations run.
	MaxIter int
	// OrbParams selects the orbital parameterization, "qr" (default) or
	// "matexp".
	OrbParams string
	// Logger receives per-iteration records; nil disables logging.
	Logger *slog.Logger
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{Tol: 1e-8, MaxIter: 100, OrbParams: "qr"}
}

// KSCalc drives a restricted closed-shell self-consistent-field calculation
// to its fixed point and exposes the converged energy as a differentiable
// function of the orbital parameters.
//
// The iteration trajectory is never taped. Run solves the fixed point with
// plain solver kernels; on convergence it re-bases the orbital
// parameterization on the converged coefficients, and EnergyFromParams
// re-evaluates the total energy once through the taped backend as a pure
// function of the declared parameters. Gradients then differentiates that
// single evaluation, which at the fixed point equals the implicit derivative
// of the converged energy.
//
// KSCalc is an editable module: its parameters live under the "orbparams."
// prefix, exercising nested attribute resolution.
type KSCalc struct {
	sys    System
	ham    Hamilton
	engine autodiff.Engine
	cfg    Config
	log    *slog.Logger

	whitener *tensor.Tensor
	orbp     orb.Parameterization
	norb     int

	state      State
	iterations int
	energy     float64
	lastDelta  float64
	dm         *tensor.Tensor
}

// New prepares a calculation: builds the Hamiltonian, whitens the overlap,
// and initializes the orbital parameterization. The system must be closed
// shell (an even electron count).
func New(sys System, cfg Config, engine autodiff.Engine) (*KSCalc, error) {
	if cfg.Tol == 0 {
		cfg.Tol = 1e-8
	}
	if cfg.OrbParams == "" {
		cfg.OrbParams = "qr"
	}
	if cfg.MaxIter < 0 {
		return nil, fmt.Errorf("dft: negative iteration budget %d", cfg.MaxIter)
	}
	if sys.NumElectrons()%2 != 0 {
		return nil, fmt.Errorf("dft: restricted calculation requires an even electron count, got %d", sys.NumElectrons())
	}
	norb := sys.NumElectrons() / 2
	if norb > sys.NumBasis() {
		return nil, fmt.Errorf("dft: %d occupied orbitals exceed basis size %d", norb, sys.NumBasis())
	}

	ham, err := sys.BuildHamilton(engine)
	if err != nil {
		return nil, err
	}
	overlap, err := ham.Overlap().ToDense()
	if err != nil {
		return nil, err
	}
	whitener := engine.SqrtmInvSym(overlap)

	var orbp orb.Parameterization
	switch cfg.OrbParams {
	case "qr":
		orbp, err = orb.NewQROrbParams(sys.NumBasis(), norb, whitener, engine)
	case "matexp":
		ref := tensor.Zeros(tensor.Shape{sys.NumBasis(), norb})
		for j := 0; j < norb; j++ {
			ref.SetAt(1, j, j)
		}
		orbp, err = orb.NewMatExpOrbParams(ref, whitener, engine)
	default:
		return nil, fmt.Errorf("dft: unknown orbital parameterization %q", cfg.OrbParams)
	}
	if err != nil {
		return nil, err
	}

	return &KSCalc{
		sys:      sys,
		ham:      ham,
		engine:   engine,
		cfg:      cfg,
		log:      cfg.Logger,
		whitener: whitener,
		orbp:     orbp,
		norb:     norb,
		state:    Uninitialized,
	}, nil
}

// State returns the calculation's lifecycle phase.
func (k *KSCalc) State() State { return k.state }

// Iterations returns how many self-consistent iterations ran.
func (k *KSCalc) Iterations() int { return k.iterations }

// Energy returns the most recent total energy (electronic plus nuclear
// repulsion). Meaningful after Run; for a Failed calculation it is the last
// iterate.
func (k *KSCalc) Energy() float64 { return k.energy }

// LastDelta returns the most recent |E_i - E_(i-1)|.
func (k *KSCalc) LastDelta() float64 { return k.lastDelta }

// Density returns the most recent density matrix, or nil before Run.
func (k *KSCalc) Density() *tensor.Tensor { return k.dm }

// OrbParams returns the orbital parameterization.
func (k *KSCalc) OrbParams() orb.Parameterization { return k.orbp }

// solveOrbitals diagonalizes a Fock matrix in the whitened basis and returns
// the occupied coefficients: C = W V[:, :norb] where (W F W) V = V diag(e).
func (k *KSCalc) solveOrbitals(fock *tensor.Tensor) *tensor.Tensor {
	fw := k.engine.MatMul(k.whitener, k.engine.MatMul(fock, k.whitener))
	_, vecs := k.engine.SymEig(fw)
	n := k.sys.NumBasis()
	occ := tensor.FromDense(vecs.Dense().Slice(0, n, 0, k.norb))
	return k.engine.MatMul(k.whitener, occ)
}

// densityFrom forms the closed-shell density D = 2 C C^T.
func (k *KSCalc) densityFrom(c *tensor.Tensor) *tensor.Tensor {
	return k.engine.Scale(2, k.engine.MatMul(c, k.engine.Transpose(c)))
}

// Run drives the self-consistent loop to a terminal state. It is a no-op on
// anything but an Uninitialized calculation.
func (k *KSCalc) Run() {
	if k.state != Uninitialized {
		return
	}
	k.state = Converging
	k.engine.GetTape().StopRecording()

	coreDense, err := k.ham.Core().ToDense()
	if err != nil {
		k.fail("core operator not materializable", err)
		return
	}

	// Core guess: occupy the lowest one-electron orbitals.
	c := k.solveOrbitals(coreDense)
	dm := k.densityFrom(c)
	ePrev := 0.0

	for i := 0; i < k.cfg.MaxIter; i++ {
		fockOp, err := k.ham.Fock(dm)
		if err != nil {
			k.fail("fock build", err)
			return
		}
		fockDense, err := fockOp.ToDense()
		if err != nil {
			k.fail("fock operator not materializable", err)
			return
		}

		c = k.solveOrbitals(fockDense)
		dm = k.densityFrom(c)
		e := k.ham.ElectronicEnergy(dm).Item() + k.sys.NuclearRepulsion()

		k.iterations = i + 1
		k.energy = e
		k.lastDelta = math.Abs(e - ePrev)
		k.dm = dm

		if k.log != nil {
			k.log.Debug("scf iteration",
				slog.Int("iter", k.iterations),
				slog.Float64("energy", e),
				slog.Float64("delta", k.lastDelta))
		}

		if math.IsNaN(e) || math.IsInf(e, 0) {
			k.fail("energy left the finite range", nil)
			return
		}

		if k.lastDelta < k.cfg.Tol {
			if err := k.orbp.SetCoeffs(c); err != nil {
				k.fail("re-basing orbital parameters", err)
				return
			}
			k.state = Converged
			if k.log != nil {
				k.log.Info("scf converged",
					slog.Int("iterations", k.iterations),
					slog.Float64("energy", e))
			}
			return
		}
		ePrev = e
	}

	k.fail("iteration budget exhausted", nil)
}

func (k *KSCalc) fail(reason string, err error) {
	k.state = Failed
	if k.log != nil {
		args := []any{
			slog.String("reason", reason),
			slog.Int("iterations", k.iterations),
		}
		if err != nil {
			args = append(args, slog.String("error", err.Error()))
		}
		k.log.Warn("scf failed", args...)
	}
}

// EnergyFromParams evaluates the total energy as a pure function of the
// orbital parameters through the backend. With a recording tape this is the
// single taped evaluation gradients are read from.
func (k *KSCalc) EnergyFromParams() *tensor.Tensor {
	c := k.orbp.Coeffs()
	dm := k.densityFrom(c)
	e := k.ham.ElectronicEnergy(dm)
	return k.engine.Add(e, tensor.Scalar(k.sys.NuclearRepulsion()))
}

// Gradients differentiates the converged total energy with respect to the
// declared orbital parameters. Requires a Converged calculation.
func (k *KSCalc) Gradients() (map[string]*tensor.Tensor, error) {
	if k.state != Converged {
		return nil, fmt.Errorf("dft: gradients require a converged calculation, state is %s", k.state)
	}
	return editable.Gradients(k, "energy", k.EnergyFromParams, k.engine)
}

// ParamNames implements editable.Module: the "energy" method depends on the
// orbital parameterization's own declared parameters, nested under
// "orbparams.".
func (k *KSCalc) ParamNames(method string) []string {
	if method != "energy" {
		return nil
	}
	inner := k.orbp.ParamNames("coeffs")
	names := make([]string, len(inner))
	for i, n := range inner {
		names[i] = "orbparams." + n
	}
	return names
}

// Attr implements attr.Object.
func (k *KSCalc) Attr(name string) (any, error) {
	switch name {
	case "orbparams":
		return k.orbp, nil
	default:
		return nil, fmt.Errorf("no attribute %q", name)
	}
}

// SetAttr implements attr.Object.
func (k *KSCalc) SetAttr(name string, value any) error {
	switch name {
	case "orbparams":
		p, ok := value.(orb.Parameterization)
		if !ok {
			return fmt.Errorf("attribute %q requires an orbital parameterization, got %T", name, value)
		}
		k.orbp = p
		return nil
	default:
		return fmt.Errorf("no attribute %q", name)
	}
}

// DelAttr implements attr.Object.
func (k *KSCalc) DelAttr(name string) error {
	return fmt.Errorf("attribute %q cannot be deleted", name)
}
