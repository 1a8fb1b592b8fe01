// Package thermostat contains the control logic of the temperature
// monitoring station: setpoint and sensor sampling, mode classification, and
// the LED, buzzer and display behaviour of each mode.
// Time is always injectable via time.Time parameters.
package thermostat

import (
	"math"

	"github.com/sweeney/labkit/internal/sensor"
)

// Mode is the operating state derived from measured minus setpoint.
type Mode int

const (
	ModeFault Mode = iota
	ModeAlarm
	ModeElevated
	ModeNormal
)

// String returns the mode name used in logs and telemetry.
func (m Mode) String() string {
	switch m {
	case ModeFault:
		return "FAULT"
	case ModeAlarm:
		return "ALARM"
	case ModeElevated:
		return "ELEVATED"
	case ModeNormal:
		return "NORMAL"
	}
	return "UNKNOWN"
}

// Classify derives the mode. A hard cutoff, not hysteresis: the same inputs
// always give the same mode.
//
//	absent measurement       -> FAULT
//	diff > alarmDelta        -> ALARM
//	0 < diff <= alarmDelta   -> ELEVATED
//	diff <= 0                -> NORMAL
func Classify(m sensor.Measurement, setpoint, alarmDelta float64) Mode {
	if !m.Valid {
		return ModeFault
	}
	diff := m.Temperature - setpoint
	switch {
	case diff > alarmDelta:
		return ModeAlarm
	case diff > 0:
		return ModeElevated
	default:
		return ModeNormal
	}
}

// Brightness is the breathing waveform: a sine mapped onto [0, 65535].
func Brightness(phase float64) uint16 {
	return uint16(int((math.Sin(phase) + 1) * 32767.5))
}
