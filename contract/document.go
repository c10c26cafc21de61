package contract

import (
	"fmt"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Lookup finds the value at a dotted path. The second result is false if any segment of the
// path is absent; a present null is still present.
func Lookup(doc ldvalue.Value, path string) (ldvalue.Value, bool) {
	current := doc
	for _, seg := range strings.Split(path, ".") {
		if current.Type() != ldvalue.ObjectType || !hasKey(current, seg) {
			return ldvalue.Null(), false
		}
		current = current.GetByKey(seg)
	}
	return current, true
}

// Overlay returns a copy of baseline with one case applied to it. The case's path must already
// exist in the baseline: a payload that doesn't have the shape the contract declares is a
// mistake in the test data, and we report it rather than quietly inventing the missing parts.
func Overlay(baseline ldvalue.Value, c BoundaryCase) (ldvalue.Value, error) {
	ret, err := replaceAt(baseline, strings.Split(c.Path, "."), c.Value, c.Missing)
	if err != nil {
		return ldvalue.Null(), fmt.Errorf("cannot apply case %q: %w", c.String(), err)
	}
	return ret, nil
}

// With returns a copy of doc with the value at path set, creating it if the parent object
// exists but the key does not.
func With(doc ldvalue.Value, path string, value ldvalue.Value) (ldvalue.Value, error) {
	segs := strings.Split(path, ".")
	if len(segs) > 1 {
		if parent, ok := Lookup(doc, strings.Join(segs[:len(segs)-1], ".")); !ok || parent.Type() != ldvalue.ObjectType {
			return ldvalue.Null(), fmt.Errorf("%q has no parent object", path)
		}
	}
	return setAt(doc, segs, value), nil
}

// Without returns a copy of doc with the value at path removed, if it was there.
func Without(doc ldvalue.Value, path string) ldvalue.Value {
	ret, err := replaceAt(doc, strings.Split(path, "."), ldvalue.Null(), true)
	if err != nil {
		return doc
	}
	return ret
}

// Merge applies a partial document on top of a base document. Objects are merged key by key;
// anything else in the patch replaces what was in the base.
func Merge(base, patch ldvalue.Value) ldvalue.Value {
	if base.Type() != ldvalue.ObjectType || patch.Type() != ldvalue.ObjectType {
		return patch
	}
	b := ldvalue.ObjectBuild()
	for _, k := range base.Keys() {
		if !hasKey(patch, k) {
			b.Set(k, base.GetByKey(k))
		}
	}
	for _, k := range patch.Keys() {
		if hasKey(base, k) {
			b.Set(k, Merge(base.GetByKey(k), patch.GetByKey(k)))
		} else {
			b.Set(k, patch.GetByKey(k))
		}
	}
	return b.Build()
}

func replaceAt(doc ldvalue.Value, segs []string, value ldvalue.Value, remove bool) (ldvalue.Value, error) {
	if doc.Type() != ldvalue.ObjectType {
		return ldvalue.Null(), fmt.Errorf("expected an object at %q but found %s", segs[0], doc.Type())
	}
	if !hasKey(doc, segs[0]) {
		return ldvalue.Null(), fmt.Errorf("baseline has no %q", segs[0])
	}
	b := ldvalue.ObjectBuild()
	for _, k := range doc.Keys() {
		switch {
		case k != segs[0]:
			b.Set(k, doc.GetByKey(k))
		case len(segs) == 1:
			if !remove {
				b.Set(k, value)
			}
		default:
			child, err := replaceAt(doc.GetByKey(k), segs[1:], value, remove)
			if err != nil {
				return ldvalue.Null(), err
			}
			b.Set(k, child)
		}
	}
	return b.Build(), nil
}

func setAt(doc ldvalue.Value, segs []string, value ldvalue.Value) ldvalue.Value {
	if len(segs) == 0 {
		return value
	}
	b := ldvalue.ObjectBuild()
	if doc.Type() == ldvalue.ObjectType {
		for _, k := range doc.Keys() {
			if k != segs[0] {
				b.Set(k, doc.GetByKey(k))
			}
		}
	}
	b.Set(segs[0], setAt(doc.GetByKey(segs[0]), segs[1:], value))
	return b.Build()
}

func hasKey(obj ldvalue.Value, key string) bool {
	for _, k := range obj.Keys() {
		if k == key {
			return true
		}
	}
	return false
}
