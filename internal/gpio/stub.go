//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealInput is not available on non-Linux platforms.
type RealInput struct{}

// NewRealInput returns an error on non-Linux platforms.
func NewRealInput(chip string, pin int) (*RealInput, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RealInput) Read() (bool, error) { return false, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (r *RealInput) Close() error { return nil }

// RealOutput is not available on non-Linux platforms.
type RealOutput struct{}

// NewRealOutput returns an error on non-Linux platforms.
func NewRealOutput(chip string, pin int) (*RealOutput, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (o *RealOutput) Set(on bool) error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (o *RealOutput) Close() error { return nil }

// RealPWM is not available on non-Linux platforms.
type RealPWM struct{}

// NewRealPWM returns an error on non-Linux platforms.
func NewRealPWM(pin int, hz uint32) (*RealPWM, error) {
	return nil, errUnsupported
}

// SetFrequency is not implemented on non-Linux platforms.
func (r *RealPWM) SetFrequency(hz uint32) error { return errUnsupported }

// SetDuty is not implemented on non-Linux platforms.
func (r *RealPWM) SetDuty(duty uint16) error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (r *RealPWM) Close() error { return nil }
