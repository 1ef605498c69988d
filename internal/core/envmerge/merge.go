// Package envmerge deep-merges reusable environment-variable fragments into
// a service's runtime environment. This is part of the Functional Core -
// all functions are pure with no I/O.
//
// Merge semantics:
//
//   - Fragments are applied strictly left to right, single pass. A fragment
//     may not reference values introduced by a later fragment.
//   - Nested maps merge recursively; scalars override.
//   - The target's own explicit values win over fragment values for pinned
//     key paths. Unpinned target values are overridable defaults: the last
//     fragment to set the key wins.
//   - Two fragments in the same invocation assigning different values to a
//     key the target does not arbitrate (no explicit target value) is a
//     configuration-authoring bug and fails with *ConflictError rather than
//     being silently resolved. Fragments meant to layer over one another
//     belong in separate invocations.
package envmerge

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// =============================================================================
// Errors
// =============================================================================

var ErrFragmentConflict = errors.New("fragments disagree on key")

// ConflictError reports two fragments assigning different values to the
// same key path in one merge invocation.
type ConflictError struct {
	Key       string // dotted key path, e.g. "db.host"
	FragmentA string // fragment that set the key first
	FragmentB string // fragment that tried to change it
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("key %q: fragment %q conflicts with fragment %q", e.Key, e.FragmentB, e.FragmentA)
}

func (e *ConflictError) Unwrap() error {
	return ErrFragmentConflict
}

// =============================================================================
// Types
// =============================================================================

// Fragment is a named, reusable environment mapping. Values may be scalars
// or nested map[string]any.
type Fragment struct {
	Name string
	Vars map[string]any
}

// Target is the service's own environment plus the set of key paths its
// author pinned as non-overridable.
type Target struct {
	Vars   map[string]any
	Pinned []string // dotted key paths
}

// =============================================================================
// Merge
// =============================================================================

// Merge folds fragments into target left to right and returns the merged
// environment. The inputs are not mutated.
//
// Example:
//
//	target := Target{Vars: map[string]any{"A": "1"}, Pinned: []string{"A"}}
//	frag := Fragment{Name: "base", Vars: map[string]any{"A": "2", "B": "3"}}
//	out, err := Merge(target, frag)
//	// out == map[string]any{"A": "1", "B": "3"}
func Merge(target Target, fragments ...Fragment) (map[string]any, error) {
	m := &merger{
		pinned:    make(map[string]bool, len(target.Pinned)),
		setBy:     make(map[string]string),
		targetTop: target.Vars,
	}
	for _, key := range target.Pinned {
		m.pinned[key] = true
	}

	merged := deepCopyMap(target.Vars)
	for _, frag := range fragments {
		if err := m.mergeInto(merged, frag.Vars, "", frag.Name); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

type merger struct {
	pinned    map[string]bool   // key paths the target pinned
	setBy     map[string]string // fragment that set each unarbitrated key
	targetTop map[string]any    // the target's original vars, untouched
}

// mergeInto merges src into dst at the given dotted prefix.
func (m *merger) mergeInto(dst, src map[string]any, prefix, fragName string) error {
	for key, srcVal := range src {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		dstVal, exists := dst[key]

		// Recurse when both sides are maps.
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dstVal.(map[string]any)
		if exists && srcIsMap && dstIsMap {
			if err := m.mergeInto(dstMap, srcMap, path, fragName); err != nil {
				return err
			}
			continue
		}

		_, targetHasValue := lookupPath(m.targetTop, path)

		if targetHasValue && m.pinned[path] {
			// Target's explicit pinned value always wins.
			continue
		}

		if !targetHasValue {
			// No target value to arbitrate: fragments must agree.
			if prev, ok := m.setBy[path]; ok && prev != fragName {
				if !reflect.DeepEqual(dstVal, srcVal) {
					return &ConflictError{Key: path, FragmentA: prev, FragmentB: fragName}
				}
				continue
			}
			m.recordSet(path, srcVal, fragName)
		}

		dst[key] = deepCopyValue(srcVal)
	}
	return nil
}

// recordSet remembers which fragment set the value at path. For map values
// the container path and every leaf beneath it are recorded, so a later
// fragment is caught whether it reaches a leaf through recursive merging
// or replaces the whole container with a scalar.
func (m *merger) recordSet(path string, val any, fragName string) {
	m.setBy[path] = fragName
	if inner, ok := val.(map[string]any); ok {
		for k, v := range inner {
			m.recordSet(path+"."+k, v, fragName)
		}
	}
}

// lookupPath resolves a dotted key path in a nested map.
func lookupPath(vars map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	current := any(vars)
	for _, part := range parts {
		inner, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = inner[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = deepCopyValue(inner)
		}
		return out
	default:
		return v
	}
}
