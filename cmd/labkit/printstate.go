package main

import (
	"fmt"
	"io"

	"github.com/sweeney/labkit/internal/analog"
	"github.com/sweeney/labkit/internal/config"
)

// printState reads every configured input once. A device that cannot be
// opened or read is reported inline; only a write failure is an error.
func printState(w io.Writer, cfg *config.Config, hw hardware) error {
	lines := []string{
		readButton(hw, "blink button", cfg.Blink.ButtonPin),
		readButton(hw, "melody button", cfg.Melody.ButtonPin),
		readChannel(hw, "setpoint pot", cfg.Thermostat.PotChannel, func(raw uint16) string {
			return fmt.Sprintf("raw=%d setpoint=%.1f°C", raw, analog.Setpoint(raw))
		}),
		readChannel(hw, "volume pot", cfg.Melody.PotChannel, func(raw uint16) string {
			return fmt.Sprintf("raw=%d", raw)
		}),
		readChannel(hw, "microphone", cfg.Beats.MicChannel, func(raw uint16) string {
			return fmt.Sprintf("raw=%d", raw)
		}),
		readSensor(hw, cfg.Thermostat.SensorAddr),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func readButton(hw hardware, name string, pin int) string {
	in, err := hw.Input(pin)
	if err != nil {
		return fmt.Sprintf("%s (GPIO%d): ERROR %v", name, pin, err)
	}
	defer in.Close()
	on, err := in.Read()
	if err != nil {
		return fmt.Sprintf("%s (GPIO%d): ERROR %v", name, pin, err)
	}
	return fmt.Sprintf("%s (GPIO%d): %s", name, pin, onOff(on))
}

func readChannel(hw hardware, name string, channel int, format func(uint16) string) string {
	a, err := hw.ADC(channel)
	if err != nil {
		return fmt.Sprintf("%s (A%d): ERROR %v", name, channel, err)
	}
	defer a.Close()
	raw, err := a.Read()
	if err != nil {
		return fmt.Sprintf("%s (A%d): ERROR %v", name, channel, err)
	}
	return fmt.Sprintf("%s (A%d): %s", name, channel, format(raw))
}

func readSensor(hw hardware, addr uint16) string {
	s, err := hw.Sensor(addr)
	if err != nil {
		return fmt.Sprintf("sensor (0x%02X): ERROR %v", addr, err)
	}
	defer s.Close()
	m, err := s.Measure()
	if err != nil {
		return fmt.Sprintf("sensor (0x%02X): ERROR %v", addr, err)
	}
	return fmt.Sprintf("sensor (0x%02X): %s", addr, m)
}
