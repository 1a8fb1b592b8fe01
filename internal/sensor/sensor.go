// Package sensor reads ambient temperature and humidity.
package sensor

import "fmt"

// Measurement is one temperature/humidity reading. Valid is false when the
// sensor could not be read; the other fields are then meaningless.
type Measurement struct {
	Temperature float64 // °C
	Humidity    float64 // %RH
	Valid       bool
}

// Absent is the measurement recorded on a sensor fault.
var Absent = Measurement{}

// String formats the measurement for logs.
func (m Measurement) String() string {
	if !m.Valid {
		return "absent"
	}
	return fmt.Sprintf("%.1f°C %.1f%%", m.Temperature, m.Humidity)
}

// Sensor measures temperature and humidity.
type Sensor interface {
	// Measure takes one reading.
	Measure() (Measurement, error)

	// Close releases the bus.
	Close() error
}
