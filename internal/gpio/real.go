//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// RealInput reads a line from the GPIO character device.
type RealInput struct {
	line *gpiocdev.Line
}

// NewRealInput requests pin (BCM numbering) as an input with pull-down, so an
// open button reads low.
func NewRealInput(chip string, pin int) (*RealInput, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		return nil, fmt.Errorf("request input pin %d: %w", pin, err)
	}
	return &RealInput{line: line}, nil
}

// Read returns true when the line is high.
func (r *RealInput) Read() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin: %w", err)
	}
	return v == 1, nil
}

// Close reconfigures the line to input with pull-down (matching Pi boot
// defaults) and releases it.
func (r *RealInput) Close() error {
	var errs []error
	if err := r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure: %w", err))
	}
	if err := r.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealOutput drives a line through the GPIO character device.
type RealOutput struct {
	line *gpiocdev.Line
}

// NewRealOutput requests pin (BCM numbering) as an output, initially low.
func NewRealOutput(chip string, pin int) (*RealOutput, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	return &RealOutput{line: line}, nil
}

// Set drives the line.
func (o *RealOutput) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

// Close drives the line low, returns it to input with pull-down and releases it.
func (o *RealOutput) Close() error {
	var errs []error
	if err := o.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("drive low: %w", err))
	}
	if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure: %w", err))
	}
	if err := o.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealPWM drives a PWM-capable pin through periph.io.
type RealPWM struct {
	pin  pgpio.PinIO
	freq uint32
	duty uint16
}

// NewRealPWM initialises the host drivers and looks up pin (BCM numbering).
// The output starts low at the given frequency.
func NewRealPWM(pin int, hz uint32) (*RealPWM, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", pin))
	if p == nil {
		return nil, fmt.Errorf("pwm pin %d not found", pin)
	}
	r := &RealPWM{pin: p, freq: hz}
	if err := r.apply(); err != nil {
		return nil, err
	}
	return r, nil
}

// SetFrequency sets the carrier frequency in Hz.
func (r *RealPWM) SetFrequency(hz uint32) error {
	r.freq = hz
	return r.apply()
}

// SetDuty sets the duty cycle in [0, DutyMax].
func (r *RealPWM) SetDuty(duty uint16) error {
	r.duty = duty
	return r.apply()
}

func (r *RealPWM) apply() error {
	if r.duty == 0 || r.freq == 0 {
		if err := r.pin.Out(pgpio.Low); err != nil {
			return fmt.Errorf("pwm low: %w", err)
		}
		return nil
	}
	if err := r.pin.PWM(toPeriphDuty(r.duty), physic.Frequency(r.freq)*physic.Hertz); err != nil {
		return fmt.Errorf("pwm duty=%d freq=%dHz: %w", r.duty, r.freq, err)
	}
	return nil
}

// Close drives the pin low and halts it.
func (r *RealPWM) Close() error {
	if err := r.pin.Out(pgpio.Low); err != nil {
		return fmt.Errorf("pwm low: %w", err)
	}
	return r.pin.Halt()
}

// toPeriphDuty maps [0, DutyMax] onto periph's [0, gpio.DutyMax].
func toPeriphDuty(d uint16) pgpio.Duty {
	return pgpio.Duty(uint64(d) * uint64(pgpio.DutyMax) / DutyMax)
}
