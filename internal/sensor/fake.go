package sensor

import "errors"

// Fake is a test double returning scripted readings.
type Fake struct {
	// Readings contains scripted results. Each call to Measure() consumes the
	// next one; the last is repeated once exhausted.
	Readings []Measurement

	// Errors, when non-nil at the index of the current call, is returned
	// instead of a reading.
	Errors []error

	Calls  int
	Closed bool
}

// NewFake creates a Fake returning the given readings.
func NewFake(readings ...Measurement) *Fake {
	return &Fake{Readings: readings}
}

// Reading is a shorthand for a valid measurement.
func Reading(temperature, humidity float64) Measurement {
	return Measurement{Temperature: temperature, Humidity: humidity, Valid: true}
}

// Measure returns the next scripted reading.
func (f *Fake) Measure() (Measurement, error) {
	i := f.Calls
	f.Calls++
	if i < len(f.Errors) && f.Errors[i] != nil {
		return Absent, f.Errors[i]
	}
	if len(f.Readings) == 0 {
		return Absent, errors.New("no readings configured")
	}
	if i >= len(f.Readings) {
		i = len(f.Readings) - 1
	}
	return f.Readings[i], nil
}

// Close marks the sensor closed.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}
