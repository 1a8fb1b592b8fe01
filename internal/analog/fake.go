package analog

import "errors"

// FakeADC is a test double that returns scripted samples.
type FakeADC struct {
	// Samples contains scripted values to return.
	// Each call to Read() consumes the next sample.
	Samples []uint16

	index int

	// Reads counts calls to Read.
	Reads int

	// Closed tracks if Close was called.
	Closed bool

	// ReadError, if set, will be returned by Read().
	ReadError error
}

// NewFakeADC creates a FakeADC with the given samples.
func NewFakeADC(samples ...uint16) *FakeADC {
	return &FakeADC{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeADC) Read() (uint16, error) {
	f.Reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}
	v := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return v, nil
}

// Set replaces the script with a single constant sample.
func (f *FakeADC) Set(v uint16) {
	f.Samples = []uint16{v}
	f.index = 0
}

// Load replaces the script and rewinds it.
func (f *FakeADC) Load(samples ...uint16) {
	f.Samples = samples
	f.index = 0
}

// Close marks the ADC as closed.
func (f *FakeADC) Close() error {
	f.Closed = true
	return nil
}
