package gpio

import "errors"

// FakeInput is a test double that returns scripted levels.
type FakeInput struct {
	// Samples contains scripted levels to return.
	// Each call to Read() consumes the next sample.
	Samples []bool

	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeInput creates a FakeInput with the given samples.
func NewFakeInput(samples ...bool) *FakeInput {
	return &FakeInput{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeInput) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}
	v := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return v, nil
}

// Close marks the input as closed.
func (f *FakeInput) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the input to the beginning of samples.
func (f *FakeInput) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeOutput records every level written.
type FakeOutput struct {
	On       bool
	Writes   []bool
	Closed   bool
	SetError error
}

// NewFakeOutput creates a FakeOutput, initially low.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Set records the level.
func (f *FakeOutput) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.On = on
	f.Writes = append(f.Writes, on)
	return nil
}

// Close drives the output low and marks it closed.
func (f *FakeOutput) Close() error {
	f.On = false
	f.Closed = true
	return nil
}

// FakePWM records frequency and duty writes.
type FakePWM struct {
	Freq   uint32
	Duty   uint16
	Duties []uint16
	Freqs  []uint32
	Closed bool

	// Error, if set, is returned by SetFrequency and SetDuty.
	Error error
}

// NewFakePWM creates a FakePWM at the given frequency with zero duty.
func NewFakePWM(hz uint32) *FakePWM {
	return &FakePWM{Freq: hz}
}

// SetFrequency records the frequency.
func (f *FakePWM) SetFrequency(hz uint32) error {
	if f.Error != nil {
		return f.Error
	}
	f.Freq = hz
	f.Freqs = append(f.Freqs, hz)
	return nil
}

// SetDuty records the duty.
func (f *FakePWM) SetDuty(duty uint16) error {
	if f.Error != nil {
		return f.Error
	}
	f.Duty = duty
	f.Duties = append(f.Duties, duty)
	return nil
}

// Close zeroes the duty and marks the PWM closed.
func (f *FakePWM) Close() error {
	f.Duty = 0
	f.Closed = true
	return nil
}
