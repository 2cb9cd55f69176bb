// Package attr resolves dotted attribute paths against object graphs.
//
// A path is a dot-separated string; each segment is a field name or an
// indexed selector like "orbitals[2]". Traversal works over a
// capability-constrained object model rather than unconstrained reflection:
// objects participate by implementing Object, and the plain containers
// []any, []*tensor.Tensor, and map[string]any traverse by index or key.
//
// This is the uniform mechanism by which an editable module exposes
// otherwise-opaque internal state to the differentiation driver.
package attr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/diffqc/diffqc/internal/tensor"
)

// Object is the accessor interface objects implement to expose named fields.
type Object interface {
	// Attr returns the value of the named field.
	Attr(name string) (any, error)
	// SetAttr replaces the value of the named field.
	SetAttr(name string, value any) error
	// DelAttr removes the named field.
	DelAttr(name string) error
}

// PathResolutionError reports a path that failed to resolve. Resolution
// failures indicate a programming or configuration error and are never
// recovered locally.
type PathResolutionError struct {
	Path    string // Full path being resolved
	Segment string // Segment that failed
	Reason  string
}

// Error implements the error interface.
func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("attr: cannot resolve %q at segment %q: %s", e.Path, e.Segment, e.Reason)
}

// segment is one parsed path component.
type segment struct {
	name    string
	index   int
	indexed bool
}

func parsePath(path string) ([]segment, error) {
	if path == "" {
		return nil, &PathResolutionError{Path: path, Segment: "", Reason: "empty path"}
	}
	parts := strings.Split(path, ".")
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, &PathResolutionError{Path: path, Segment: p, Reason: "empty segment"}
		}
		if open := strings.IndexByte(p, '['); open >= 0 {
			if !strings.HasSuffix(p, "]") || open == 0 {
				return nil, &PathResolutionError{Path: path, Segment: p, Reason: "malformed index selector"}
			}
			idx, err := strconv.Atoi(p[open+1 : len(p)-1])
			if err != nil {
				return nil, &PathResolutionError{Path: path, Segment: p, Reason: "non-integer index"}
			}
			segs = append(segs, segment{name: p[:open], index: idx, indexed: true})
			continue
		}
		segs = append(segs, segment{name: p})
	}
	return segs, nil
}

// step resolves one segment against the current value.
func step(path string, cur any, seg segment) (any, error) {
	val, err := fieldOf(path, cur, seg)
	if err != nil {
		return nil, err
	}
	if !seg.indexed {
		return val, nil
	}
	return indexOf(path, val, seg)
}

func fieldOf(path string, cur any, seg segment) (any, error) {
	switch c := cur.(type) {
	case Object:
		v, err := c.Attr(seg.name)
		if err != nil {
			return nil, &PathResolutionError{Path: path, Segment: seg.name, Reason: err.Error()}
		}
		return v, nil
	case map[string]any:
		v, ok := c[seg.name]
		if !ok {
			return nil, &PathResolutionError{Path: path, Segment: seg.name, Reason: "key not found"}
		}
		return v, nil
	default:
		return nil, &PathResolutionError{Path: path, Segment: seg.name,
			Reason: fmt.Sprintf("value of type %T is not traversable", cur)}
	}
}

func indexOf(path string, val any, seg segment) (any, error) {
	switch v := val.(type) {
	case []any:
		if seg.index < 0 || seg.index >= len(v) {
			return nil, &PathResolutionError{Path: path, Segment: seg.name,
				Reason: fmt.Sprintf("index %d out of range (len %d)", seg.index, len(v))}
		}
		return v[seg.index], nil
	case []*tensor.Tensor:
		if seg.index < 0 || seg.index >= len(v) {
			return nil, &PathResolutionError{Path: path, Segment: seg.name,
				Reason: fmt.Sprintf("index %d out of range (len %d)", seg.index, len(v))}
		}
		return v[seg.index], nil
	default:
		return nil, &PathResolutionError{Path: path, Segment: seg.name,
			Reason: fmt.Sprintf("value of type %T is not indexable", val)}
	}
}

// Get resolves path against obj and returns the value at its end.
func Get(obj any, path string) (any, error) {
	segs, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	cur := obj
	for _, seg := range segs {
		cur, err = step(path, cur, seg)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// Set resolves all but the last segment of path, then assigns value to the
// final segment on the resolved parent. No other state is touched.
func Set(obj any, path string, value any) error {
	segs, err := parsePath(path)
	if err != nil {
		return err
	}
	parent, last, err := resolveParent(obj, path, segs)
	if err != nil {
		return err
	}
	if last.indexed {
		container, err := fieldOf(path, parent, last)
		if err != nil {
			return err
		}
		return setIndex(path, container, last, value)
	}
	switch p := parent.(type) {
	case Object:
		if err := p.SetAttr(last.name, value); err != nil {
			return &PathResolutionError{Path: path, Segment: last.name, Reason: err.Error()}
		}
		return nil
	case map[string]any:
		p[last.name] = value
		return nil
	default:
		return &PathResolutionError{Path: path, Segment: last.name,
			Reason: fmt.Sprintf("value of type %T does not support mutation", parent)}
	}
}

// Del resolves all but the last segment of path, then removes the final
// segment from the resolved parent.
func Del(obj any, path string) error {
	segs, err := parsePath(path)
	if err != nil {
		return err
	}
	parent, last, err := resolveParent(obj, path, segs)
	if err != nil {
		return err
	}
	if last.indexed {
		return &PathResolutionError{Path: path, Segment: last.name,
			Reason: "cannot delete an indexed element"}
	}
	switch p := parent.(type) {
	case Object:
		if err := p.DelAttr(last.name); err != nil {
			return &PathResolutionError{Path: path, Segment: last.name, Reason: err.Error()}
		}
		return nil
	case map[string]any:
		if _, ok := p[last.name]; !ok {
			return &PathResolutionError{Path: path, Segment: last.name, Reason: "key not found"}
		}
		delete(p, last.name)
		return nil
	default:
		return &PathResolutionError{Path: path, Segment: last.name,
			Reason: fmt.Sprintf("value of type %T does not support mutation", parent)}
	}
}

func resolveParent(obj any, path string, segs []segment) (any, segment, error) {
	cur := obj
	var err error
	for _, seg := range segs[:len(segs)-1] {
		cur, err = step(path, cur, seg)
		if err != nil {
			return nil, segment{}, err
		}
	}
	return cur, segs[len(segs)-1], nil
}

func setIndex(path string, container any, seg segment, value any) error {
	switch c := container.(type) {
	case []any:
		if seg.index < 0 || seg.index >= len(c) {
			return &PathResolutionError{Path: path, Segment: seg.name,
				Reason: fmt.Sprintf("index %d out of range (len %d)", seg.index, len(c))}
		}
		c[seg.index] = value
		return nil
	case []*tensor.Tensor:
		t, ok := value.(*tensor.Tensor)
		if !ok {
			return &PathResolutionError{Path: path, Segment: seg.name,
				Reason: fmt.Sprintf("cannot store %T in a tensor slice", value)}
		}
		if seg.index < 0 || seg.index >= len(c) {
			return &PathResolutionError{Path: path, Segment: seg.name,
				Reason: fmt.Sprintf("index %d out of range (len %d)", seg.index, len(c))}
		}
		c[seg.index] = t
		return nil
	default:
		return &PathResolutionError{Path: path, Segment: seg.name,
			Reason: fmt.Sprintf("value of type %T is not indexable", container)}
	}
}
