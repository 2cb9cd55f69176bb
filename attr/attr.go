// Copyright 2026 The diffqc Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package attr provides the public API for dotted-path attribute access.
//
// Paths address values inside nested objects, maps, and slices:
//
//	v, _ := attr.Get(obj, "layers[2].weights")
//	err := attr.Set(obj, "config.tolerance", t)
package attr

import (
	"github.com/diffqc/diffqc/internal/attr"
)

// Object is anything exposing named attributes.
type Object = attr.Object

// PathResolutionError reports the segment at which path traversal failed.
type PathResolutionError = attr.PathResolutionError

// Get resolves a dotted path and returns the value at its end.
func Get(root any, path string) (any, error) { return attr.Get(root, path) }

// Set resolves a dotted path and writes the value at its end.
func Set(root any, path string, value any) error { return attr.Set(root, path, value) }

// Del resolves a dotted path and removes the attribute at its end.
func Del(root any, path string) error { return attr.Del(root, path) }
