// Package optional carries the outcome of best-effort queries.
//
// Read-only media queries never fail loudly: a missing file, a tool that
// could not start, or output that does not parse all collapse into an
// unknown result. Value makes that case explicit so call sites pick their
// own fallback instead of relying on magic numbers.
package optional

// Value holds either a known result or nothing.
type Value[T any] struct {
	value T
	known bool
}

// Of wraps a known result.
func Of[T any](v T) Value[T] {
	return Value[T]{value: v, known: true}
}

// None returns an unknown result.
func None[T any]() Value[T] {
	return Value[T]{}
}

// Get returns the wrapped value and whether it is known.
func (v Value[T]) Get() (T, bool) {
	return v.value, v.known
}

// Known reports whether a value is present.
func (v Value[T]) Known() bool {
	return v.known
}

// Or returns the wrapped value, or fallback when unknown.
func (v Value[T]) Or(fallback T) T {
	if !v.known {
		return fallback
	}
	return v.value
}
