// Package filter provides bounded buffers for smoothing analog readings and
// keeping a rolling history of measured intervals.
package filter

// Ring is a fixed-capacity FIFO. Pushing onto a full Ring evicts the oldest
// value. Not safe for concurrent use.
type Ring[T any] struct {
	buf      []T
	capacity int
	head     int // next write position
	count    int
}

// NewRing creates a Ring holding at most capacity values. A capacity below 1
// is raised to 1.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{
		buf:      make([]T, capacity),
		capacity: capacity,
	}
}

// Push appends v, overwriting the oldest value when the Ring is full.
func (r *Ring[T]) Push(v T) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % r.capacity
	if r.count < r.capacity {
		r.count++
	}
}

// Values returns a copy of the stored values, oldest first.
func (r *Ring[T]) Values() []T {
	if r.count == 0 {
		return nil
	}
	out := make([]T, r.count)
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(start+i)%r.capacity]
	}
	return out
}

// Last returns the most recently pushed value.
func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	return r.buf[(r.head-1+r.capacity)%r.capacity], true
}

// Len returns the number of stored values.
func (r *Ring[T]) Len() int {
	return r.count
}

// Cap returns the capacity.
func (r *Ring[T]) Cap() int {
	return r.capacity
}

// Clear drops every stored value.
func (r *Ring[T]) Clear() {
	r.head = 0
	r.count = 0
}
