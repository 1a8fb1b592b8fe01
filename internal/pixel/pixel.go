// Package pixel drives a single WS2812 addressable RGB LED.
package pixel

import (
	"fmt"
	"math/rand/v2"

	"github.com/chewxy/math32"
)

// Color is an RGB triple.
type Color struct {
	R, G, B uint8
}

// String formats the colour as (r, g, b).
func (c Color) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// Pixel is one RGB LED.
type Pixel interface {
	// Write shows c.
	Write(c Color) error

	// Close turns the LED off and releases the bus.
	Close() error
}

// Fade scales every channel by factor, truncating toward zero.
func Fade(c Color, factor float32) Color {
	return Color{
		R: scale(c.R, factor),
		G: scale(c.G, factor),
		B: scale(c.B, factor),
	}
}

func scale(v uint8, factor float32) uint8 {
	f := math32.Floor(float32(v) * factor)
	if f <= 0 {
		return 0
	}
	if f >= 255 {
		return 255
	}
	return uint8(f)
}

// Random returns a colour with each channel drawn uniformly from [lo, 255].
func Random(r *rand.Rand, lo uint8) Color {
	ch := func() uint8 {
		return lo + uint8(r.IntN(256-int(lo)))
	}
	return Color{R: ch(), G: ch(), B: ch()}
}
