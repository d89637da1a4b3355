package vtile

import "fmt"

// GeometryError is a recoverable domain error raised by geometry
// validation: too many points for a command's 29-bit count field, or too
// few points for a linestring ring/polygon ring. Callers are free to
// either roll back the offending feature or keep building; nothing about
// the layer or tile is corrupted by a GeometryError.
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return "vtile: geometry error: " + e.Reason
}

func newGeometryError(format string, args ...any) *GeometryError {
	return &GeometryError{Reason: fmt.Sprintf(format, args...)}
}

// RangeError is returned when an index-based lookup (an attribute scaling
// slot, for instance) falls outside the populated range of its table.
type RangeError struct {
	Index, Len int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("vtile: index %d out of range [0,%d)", e.Index, e.Len)
}

// InvariantViolation is the panic value used for programmer errors: wrong
// feature-builder state transitions, version-gated calls made against the
// wrong version, or constructing a second feature builder on a layer that
// already has one in flight. These indicate a bug in the caller, never a
// recoverable runtime condition, so they are not returned as errors —
// they panic, matching the teacher's own invariant-violation handling in
// pkg/listener ("channel listener error: " + err.Error()).
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return "vtile: invariant violation: " + e.Reason
}

func panicInvariant(format string, args ...any) {
	panic(&InvariantViolation{Reason: fmt.Sprintf(format, args...)})
}
