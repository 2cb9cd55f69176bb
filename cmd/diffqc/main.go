// Copyright 2026 The diffqc Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package main provides the diffqc command-line interface.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/diffqc/diffqc/autodiff"
	"github.com/diffqc/diffqc/backend/cpu"
	"github.com/diffqc/diffqc/dft"
	"github.com/diffqc/diffqc/tensor"
)

const version = "v0.1.0-dev"

// inputFile is the YAML description of a calculation: integral tables plus
// solver settings.
type inputFile struct {
	AtomicNumbers    []int       `yaml:"atomic_numbers"`
	Electrons        int         `yaml:"electrons"`
	NuclearRepulsion float64     `yaml:"nuclear_repulsion"`
	Overlap          [][]float64 `yaml:"overlap"`
	Core             [][]float64 `yaml:"core"`
	ERI              []float64   `yaml:"eri"`
	Tol              float64     `yaml:"tol"`
	MaxIter          *int        `yaml:"max_iter"` // nil means default; explicit 0 is a zero budget
	OrbParams        string      `yaml:"orb_params"`
	DensityFitting   bool        `yaml:"density_fitting"`
	Gradients        bool        `yaml:"gradients"`

	// XC selects a functional by name ("lda_x"); empty means Hartree-Fock
	// exchange. A functional needs the basis shells and a quadrature box.
	XC     string       `yaml:"xc"`
	Shells []inputShell `yaml:"shells"`
	Grid   *inputGrid   `yaml:"grid"`
}

type inputShell struct {
	Center    [3]float64 `yaml:"center"`
	Exponents []float64  `yaml:"exponents"`
	Coeffs    []float64  `yaml:"coeffs"`
}

type inputGrid struct {
	Min  [3]float64 `yaml:"min"`
	Max  [3]float64 `yaml:"max"`
	Npts [3]int     `yaml:"npts"`
}

func matrixFromRows(rows [][]float64, name string) (*tensor.Tensor, error) {
	n := len(rows)
	flat := make([]float64, 0, n*n)
	for _, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%s must be square, row has %d of %d entries", name, len(row), n)
		}
		flat = append(flat, row...)
	}
	return tensor.FromSlice(flat, tensor.Shape{n, n})
}

func runCalculation(path string, verbose bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var in inputFile
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	overlap, err := matrixFromRows(in.Overlap, "overlap")
	if err != nil {
		return err
	}
	core, err := matrixFromRows(in.Core, "core")
	if err != nil {
		return err
	}

	engine := autodiff.New(cpu.New())

	sysCfg := dft.IntegralSystemConfig{
		AtomicNumbers:     in.AtomicNumbers,
		NumElectrons:      in.Electrons,
		NuclearRepulsion:  in.NuclearRepulsion,
		Overlap:           overlap,
		Core:              core,
		ERI:               in.ERI,
		UseDensityFitting: in.DensityFitting,
	}
	switch in.XC {
	case "":
	case "lda_x":
		if in.Grid == nil || len(in.Shells) == 0 {
			return fmt.Errorf("xc %q requires shells and a grid", in.XC)
		}
		sysCfg.XC = dft.NewLDAExchange(engine)
		sysCfg.Grid = dft.NewUniformGrid(in.Grid.Min, in.Grid.Max, in.Grid.Npts)
		for _, sh := range in.Shells {
			sysCfg.Basis = append(sysCfg.Basis, dft.GaussianShell{
				Center:    sh.Center,
				Exponents: sh.Exponents,
				Coeffs:    sh.Coeffs,
			})
		}
	default:
		return fmt.Errorf("unknown functional %q", in.XC)
	}

	sys, err := dft.NewIntegralSystem(sysCfg)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := dft.Config{
		Tol:       in.Tol,
		MaxIter:   dft.DefaultConfig().MaxIter,
		OrbParams: in.OrbParams,
		Logger:    logger,
	}
	if in.MaxIter != nil {
		cfg.MaxIter = *in.MaxIter
	}

	calc, err := dft.New(sys, cfg, engine)
	if err != nil {
		return err
	}
	calc.Run()

	switch calc.State() {
	case dft.Converged:
		fmt.Printf("converged in %d iterations\n", calc.Iterations())
		fmt.Printf("total energy: %.10f Ha\n", calc.Energy())
	default:
		return fmt.Errorf("calculation %s after %d iterations (last energy %.10f, last delta %.3e)",
			calc.State(), calc.Iterations(), calc.Energy(), calc.LastDelta())
	}

	if in.Gradients {
		grads, err := calc.Gradients()
		if err != nil {
			return err
		}
		for _, name := range calc.ParamNames("energy") {
			fmt.Printf("d(energy)/d(%s):\n%v\n", name, grads[name])
		}
	}
	return nil
}

func main() {
	root := &cobra.Command{
		Use:   "diffqc",
		Short: "Differentiable self-consistent-field calculations",
	}

	var verbose bool
	run := &cobra.Command{
		Use:   "run <input.yaml>",
		Short: "Run a self-consistent-field calculation from a YAML input file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalculation(args[0], verbose)
		},
	}
	run.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every SCF iteration")

	root.AddCommand(run)
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("diffqc %s\n", version)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
