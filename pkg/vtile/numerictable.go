package vtile

import "vtilebuilder/pkg/types"

// numericTable is a per-layer interning table for one of the v3 typed
// value tables (double_values, float_values, int_values). Unlike
// stringTable it never promotes to a hash map: duplicate detection is
// always a linear scan of the typed slice. Small N dominates in practice
// and bitwise/native equality on floats is exactly what the container's
// built-in comparison gives us, so a hash index would only add overhead.
type numericTable[T comparable] struct {
	values []T
}

// AddWithoutDupCheck appends v unconditionally and returns its index.
func (t *numericTable[T]) AddWithoutDupCheck(v T) types.Index {
	t.values = append(t.values, v)
	return types.Index(len(t.values) - 1)
}

// Add returns the index of an existing entry equal to v, appending a new
// one if none is found.
func (t *numericTable[T]) Add(v T) types.Index {
	for i, existing := range t.values {
		if existing == v {
			return types.Index(i)
		}
	}
	return t.AddWithoutDupCheck(v)
}

// Len reports the number of interned entries.
func (t *numericTable[T]) Len() int {
	return len(t.values)
}

// Values returns the raw backing slice, ready for a caller to pack into a
// wire field.
func (t *numericTable[T]) Values() []T {
	return t.values
}
