// Package ordkeys provides deterministic iteration order over Go maps,
// the way the teacher's internal/codec.SortedKeys keeps package and file
// emission order stable across runs.
package ordkeys

import (
	"cmp"
	"slices"
)

// Sorted returns the keys of m in ascending order.
func Sorted[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
