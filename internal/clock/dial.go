package clock

import "time"

// Servo pulse range at 50 Hz, as 16-bit duty values.
const (
	ServoDutyMin = 2000
	ServoDutyMax = 8500

	// ServoFrequency is the standard hobby-servo frame rate.
	ServoFrequency = 50
)

// HourAngle maps an hour of day onto the dial: twelve o'clock points at 0°,
// and the pointer moves 15° per hour counting down toward 180°.
func HourAngle(hour int) float64 {
	return float64((12-(hour%12))%12) * (180.0 / 12)
}

// ServoDuty converts an angle in [0, 180] into a PWM duty value.
func ServoDuty(angle float64) uint16 {
	return uint16(int(ServoDutyMin + (angle/180)*(ServoDutyMax-ServoDutyMin)))
}

// Reading is the dial position for a given instant.
type Reading struct {
	Hour   int
	Minute int
	Angle  float64
	Duty   uint16
}

// Position computes the dial reading for utc shifted into zone.
func Position(utc time.Time, zone *time.Location) Reading {
	local := utc.In(zone)
	angle := HourAngle(local.Hour())
	return Reading{
		Hour:   local.Hour(),
		Minute: local.Minute(),
		Angle:  angle,
		Duty:   ServoDuty(angle),
	}
}
