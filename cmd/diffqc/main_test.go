// Copyright 2026 The diffqc Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// h2Input is a minimal STO-3G H2 calculation from tabulated integrals.
const h2Input = `atomic_numbers: [1, 1]
electrons: 2
nuclear_repulsion: 0.7142857142857143
overlap:
  - [1.0, 0.6593]
  - [0.6593, 1.0]
core:
  - [-1.1204, -0.9584]
  - [-0.9584, -1.1204]
eri: [0.7746, 0.4441, 0.4441, 0.5697,
      0.4441, 0.2970, 0.2970, 0.4441,
      0.4441, 0.2970, 0.2970, 0.4441,
      0.5697, 0.4441, 0.4441, 0.7746]
`

func writeInput(t *testing.T, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "h2.yaml")
	if err := os.WriteFile(path, []byte(h2Input+extra), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCalculation_DefaultBudgetConverges(t *testing.T) {
	if err := runCalculation(writeInput(t, ""), false); err != nil {
		t.Fatal(err)
	}
}

func TestRunCalculation_ExplicitZeroBudgetFails(t *testing.T) {
	// max_iter: 0 is a zero iteration budget, not a request for the default.
	err := runCalculation(writeInput(t, "max_iter: 0\n"), false)
	if err == nil {
		t.Fatal("calculation succeeded with a zero iteration budget")
	}
	if !strings.Contains(err.Error(), "after 0 iterations") {
		t.Errorf("unexpected error: %v", err)
	}
}
