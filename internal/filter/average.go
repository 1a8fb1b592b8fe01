package filter

import "fmt"

// Source yields raw 16-bit samples.
type Source interface {
	Read() (uint16, error)
}

// Average is a moving-average filter over raw 16-bit samples.
type Average struct {
	ring *Ring[uint16]
}

// NewAverage creates an Average over the last window samples.
func NewAverage(window int) *Average {
	return &Average{ring: NewRing[uint16](window)}
}

// Add pushes one sample into the window.
func (a *Average) Add(v uint16) {
	a.ring.Push(v)
}

// Fill replaces the window with n fresh samples read from src.
func (a *Average) Fill(src Source, n int) error {
	a.ring.Clear()
	for i := 0; i < n; i++ {
		v, err := src.Read()
		if err != nil {
			return fmt.Errorf("sample %d/%d: %w", i+1, n, err)
		}
		a.ring.Push(v)
	}
	return nil
}

// Value returns the floor of the mean of the window, or 0 when empty.
func (a *Average) Value() uint16 {
	n := a.ring.Len()
	if n == 0 {
		return 0
	}
	var sum uint64
	for _, v := range a.ring.Values() {
		sum += uint64(v)
	}
	return uint16(sum / uint64(n))
}

// Len returns the number of samples in the window.
func (a *Average) Len() int {
	return a.ring.Len()
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
