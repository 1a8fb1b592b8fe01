// Package analog reads 16-bit analog inputs and maps them onto physical ranges.
// The real implementations talk to an ADS1115 over I2C or to a microcontroller
// streaming samples over USB serial. The fake implementation allows testing
// without hardware.
package analog

import "math"

// FullScale is the largest raw sample value.
const FullScale = 65535

// Setpoint range in degrees Celsius.
const (
	SetpointMin = 15.0
	SetpointMax = 35.0
)

// ADC reads raw samples in [0, FullScale].
type ADC interface {
	// Read returns one raw sample.
	Read() (uint16, error)

	// Close releases the underlying bus or port.
	Close() error
}

// Scale maps raw linearly onto [low, high]: low + (raw/65535)*(high-low).
func Scale(raw uint16, low, high float64) float64 {
	return low + (float64(raw)/FullScale)*(high-low)
}

// Setpoint converts a raw potentiometer sample into a target temperature in
// [SetpointMin, SetpointMax], rounded to 0.1°C.
func Setpoint(raw uint16) float64 {
	return Round1(Scale(raw, SetpointMin, SetpointMax))
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
