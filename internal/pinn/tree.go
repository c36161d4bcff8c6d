package pinn

import (
	"fmt"
	"sort"
)

// sortedKeys returns the keys of m in lexical order. Breakdown maps and
// per-equation dictionaries are iterated through this so evaluation order,
// and therefore floating-point accumulation order, is deterministic.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sameKeySet reports whether both maps have exactly the same keys.
func sameKeySet[V1, V2 any](a map[string]V1, b map[string]V2) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// ZipReduce zips two maps over their (identical) key sets and applies the
// reducer per key. Key-set disagreement is an error, never a silent
// partial result.
func ZipReduce[V any](a, b map[string]V, reduce func(V, V) V) (map[string]V, error) {
	if !sameKeySet(a, b) {
		return nil, fmt.Errorf("%w: zip over %v and %v", ErrKeyMismatch, sortedKeys(a), sortedKeys(b))
	}
	out := make(map[string]V, len(a))
	for k, va := range a {
		out[k] = reduce(va, b[k])
	}
	return out, nil
}

// MapValues applies f to every value, returning a new map.
func MapValues[V1, V2 any](m map[string]V1, f func(V1) V2) map[string]V2 {
	out := make(map[string]V2, len(m))
	for k, v := range m {
		out[k] = f(v)
	}
	return out
}
