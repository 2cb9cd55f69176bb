// Copyright 2026 The diffqc Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU compute backend, implemented on Gonum.
package cpu

import (
	"github.com/diffqc/diffqc/internal/backend/cpu"
)

// Backend is the CPU implementation of tensor.Backend.
type Backend = cpu.Backend

// New creates a CPU backend.
func New() *Backend { return cpu.New() }
