package pixel

// Fake records every colour written.
type Fake struct {
	Current Color
	Writes  []Color
	Closed  bool

	// Error, if set, will be returned by Write.
	Error error
}

// NewFake creates a dark Fake pixel.
func NewFake() *Fake {
	return &Fake{}
}

// Write records c.
func (f *Fake) Write(c Color) error {
	if f.Error != nil {
		return f.Error
	}
	f.Current = c
	f.Writes = append(f.Writes, c)
	return nil
}

// Close turns the fake off.
func (f *Fake) Close() error {
	f.Current = Color{}
	f.Closed = true
	return nil
}
