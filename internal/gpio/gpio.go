// Package gpio provides digital and PWM pin access with hardware abstraction.
// The real implementation uses the Linux GPIO character device for digital
// lines and periph.io for PWM. The fake implementation allows testing without
// hardware.
package gpio

// Input reads a digital line.
type Input interface {
	// Read returns true when the line is high.
	Read() (bool, error)

	// Close releases the line.
	Close() error
}

// Output drives a digital line.
type Output interface {
	// Set drives the line high (true) or low (false).
	Set(on bool) error

	// Close releases the line.
	Close() error
}

// PWM drives a pulse-width-modulated line.
type PWM interface {
	// SetFrequency sets the carrier frequency in Hz. A frequency of 0 silences
	// the output until a non-zero frequency is set again.
	SetFrequency(hz uint32) error

	// SetDuty sets the duty cycle in [0, DutyMax].
	SetDuty(duty uint16) error

	// Close drives the line low and releases it.
	Close() error
}

// DutyMax is a fully-on duty cycle; DutyHalf is a 50% square wave.
const (
	DutyMax  = 65535
	DutyHalf = 32768
)

// DefaultChip is the Raspberry Pi GPIO character device.
const DefaultChip = "gpiochip0"
