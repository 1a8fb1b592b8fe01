package thermostat

import (
	"errors"
	"fmt"

	"github.com/sweeney/labkit/internal/gpio"
)

// Actuators drives the indicator LED and the buzzer. Writes only go to the
// hardware when a level changes.
type Actuators struct {
	led        gpio.PWM
	buzzer     gpio.PWM
	buzzerDuty uint16

	ledDuty  uint16
	buzzerOn bool
	primed   bool
}

// NewActuators wraps the two PWM outputs. The buzzer sounds at buzzerDuty.
func NewActuators(led, buzzer gpio.PWM, buzzerDuty uint16) *Actuators {
	return &Actuators{led: led, buzzer: buzzer, buzzerDuty: buzzerDuty}
}

// Apply brings the outputs in line with o.
func (a *Actuators) Apply(o Output) error {
	return a.set(o.LED, o.Buzzer)
}

// Safe silences the buzzer and turns the LED off.
func (a *Actuators) Safe() error {
	a.primed = false
	return a.set(0, false)
}

func (a *Actuators) set(led uint16, buzzer bool) error {
	var errs []error
	if !a.primed || led != a.ledDuty {
		if err := a.led.SetDuty(led); err != nil {
			errs = append(errs, fmt.Errorf("led: %w", err))
		} else {
			a.ledDuty = led
		}
	}
	if !a.primed || buzzer != a.buzzerOn {
		duty := uint16(0)
		if buzzer {
			duty = a.buzzerDuty
		}
		if err := a.buzzer.SetDuty(duty); err != nil {
			errs = append(errs, fmt.Errorf("buzzer: %w", err))
		} else {
			a.buzzerOn = buzzer
		}
	}
	if len(errs) > 0 {
		a.primed = false
		return errors.Join(errs...)
	}
	a.primed = true
	return nil
}
