package sdmx

// Axis is an ordered dimension value list with a reverse lookup.
// Payload data references axis members only by their position.
type Axis[T comparable] struct {
	values []T
	index  map[T]int
}

// NewAxis creates an axis over values in declared order.
// A repeated value keeps the position of its first occurrence in the reverse lookup.
func NewAxis[T comparable](values []T) Axis[T] {
	index := make(map[T]int, len(values))
	for i, v := range values {
		if _, exists := index[v]; !exists {
			index[v] = i
		}
	}

	return Axis[T]{
		values: append([]T(nil), values...),
		index:  index,
	}
}

// Len returns the number of positions on the axis
func (a Axis[T]) Len() int {
	return len(a.values)
}

// Value returns the member at position i
func (a Axis[T]) Value(i int) (T, bool) {
	if i < 0 || i >= len(a.values) {
		var zero T
		return zero, false
	}
	return a.values[i], true
}

// Index returns the first position of v
func (a Axis[T]) Index(v T) (int, bool) {
	i, ok := a.index[v]
	return i, ok
}

// Values returns a copy of the members in declared order
func (a Axis[T]) Values() []T {
	return append([]T(nil), a.values...)
}
