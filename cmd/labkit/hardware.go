package main

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/sweeney/labkit/internal/analog"
	"github.com/sweeney/labkit/internal/config"
	"github.com/sweeney/labkit/internal/display"
	"github.com/sweeney/labkit/internal/gpio"
	"github.com/sweeney/labkit/internal/pixel"
	"github.com/sweeney/labkit/internal/sensor"
)

// hardware opens peripherals. Tests substitute fakes.
type hardware struct {
	Input   func(pin int) (gpio.Input, error)
	Output  func(pin int) (gpio.Output, error)
	PWM     func(pin int, hz uint32) (gpio.PWM, error)
	ADC     func(channel int) (analog.ADC, error)
	Sensor  func(addr uint16) (sensor.Sensor, error)
	Display func(addr uint16) (display.Display, error)
	Pixel   func() (pixel.Pixel, error)
}

// openHardware returns openers for the real devices described by cfg.
func openHardware(cfg *config.Config) hardware {
	hw := cfg.Hardware
	return hardware{
		Input: func(pin int) (gpio.Input, error) {
			in, err := gpio.NewRealInput(hw.Chip, pin)
			if err != nil {
				return nil, err
			}
			return in, nil
		},
		Output: func(pin int) (gpio.Output, error) {
			out, err := gpio.NewRealOutput(hw.Chip, pin)
			if err != nil {
				return nil, err
			}
			return out, nil
		},
		PWM: func(pin int, hz uint32) (gpio.PWM, error) {
			p, err := gpio.NewRealPWM(pin, hz)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		ADC: func(channel int) (analog.ADC, error) {
			if hw.ADC.Kind == config.ADCKindSerial {
				a, err := analog.NewSerialADC(hw.ADC.SerialPort, hw.ADC.Baud, channel)
				if err != nil {
					return nil, err
				}
				return a, nil
			}
			a, err := analog.NewADS1115(hw.I2CBus, hw.ADC.Addr, channel, hw.ADC.VRef)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
		Sensor: func(addr uint16) (sensor.Sensor, error) {
			s, err := sensor.NewDHT20(hw.I2CBus, addr)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		Display: func(addr uint16) (display.Display, error) {
			d, err := display.NewGrove(hw.I2CBus, addr)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
		Pixel: func() (pixel.Pixel, error) {
			p, err := pixel.NewWS2812(hw.SPIPort)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
	}
}

// closers releases devices in reverse opening order.
type closers []io.Closer

func (c *closers) add(x io.Closer) {
	*c = append(*c, x)
}

// Close closes everything, collecting errors.
func (c closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// closeAll is deferred by the run functions.
func closeAll(c closers) {
	if err := c.Close(); err != nil {
		log.Printf("close error: %v", err)
	}
}

func openErr(what string, err error) error {
	return fmt.Errorf("init %s: %w", what, err)
}
