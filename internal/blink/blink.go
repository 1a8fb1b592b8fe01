// Package blink cycles an LED through off, slow and fast blinking on each
// button press.
package blink

import (
	"time"

	"github.com/sweeney/labkit/internal/button"
	"github.com/sweeney/labkit/internal/config"
	"github.com/sweeney/labkit/internal/timer"
)

// Mode is the blink pattern.
type Mode int

const (
	ModeOff  Mode = iota // LED dark
	ModeSlow             // 0.5 Hz
	ModeFast             // 2 Hz

	modeCount = 3
)

// String names the mode.
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "OFF"
	case ModeSlow:
		return "SLOW"
	case ModeFast:
		return "FAST"
	}
	return "UNKNOWN"
}

// Output is the result of one step.
type Output struct {
	Mode    Mode
	LED     bool
	Pressed bool // the button advanced the mode this step
}

// Controller holds the blink state.
type Controller struct {
	cfg    config.BlinkConfig
	button *button.Edge
	toggle *timer.Interval
	mode   Mode
	led    bool
}

// NewController creates a controller in ModeOff.
func NewController(cfg config.BlinkConfig) *Controller {
	return &Controller{
		cfg:    cfg,
		button: button.NewEdge(cfg.Debounce),
		toggle: timer.New(0),
	}
}

// Step processes one button sample at now.
func (c *Controller) Step(now time.Time, buttonLevel bool) Output {
	pressed := c.button.Process(buttonLevel, now)
	if pressed {
		c.mode = (c.mode + 1) % modeCount
	}

	switch c.mode {
	case ModeOff:
		c.led = false
	case ModeSlow:
		c.toggle.Period = c.cfg.SlowPeriod
		if c.toggle.Due(now) {
			c.led = !c.led
		}
	case ModeFast:
		c.toggle.Period = c.cfg.FastPeriod
		if c.toggle.Due(now) {
			c.led = !c.led
		}
	}

	return Output{Mode: c.mode, LED: c.led, Pressed: pressed}
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	return c.mode
}
