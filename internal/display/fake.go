package display

import (
	"strings"
)

// Fake is an in-memory display for tests. It keeps the visible characters
// and counts calls.
type Fake struct {
	rows [Rows][Columns]rune

	Clears int
	Prints int
	Closed bool

	// Error, if set, is returned by every drawing call.
	Error error
}

// NewFake creates a blank Fake display.
func NewFake() *Fake {
	f := &Fake{}
	f.blank()
	return f
}

func (f *Fake) blank() {
	for r := range f.rows {
		for c := range f.rows[r] {
			f.rows[r][c] = ' '
		}
	}
}

// Clear blanks the display.
func (f *Fake) Clear() error {
	if f.Error != nil {
		return f.Error
	}
	f.Clears++
	f.blank()
	return nil
}

// ClearLine blanks a row.
func (f *Fake) ClearLine(row int) error {
	return f.Print(blank, row, 0)
}

// Print writes text into the row buffer.
func (f *Fake) Print(text string, row, col int) error {
	if f.Error != nil {
		return f.Error
	}
	f.Prints++
	for i, r := range []rune(Truncate(text, col)) {
		f.rows[row][col+i] = r
	}
	return nil
}

// Close marks the display closed.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

// Line returns a row with trailing spaces trimmed.
func (f *Fake) Line(row int) string {
	return strings.TrimRight(string(f.rows[row][:]), " ")
}

// Raw returns a row untrimmed.
func (f *Fake) Raw(row int) string {
	return string(f.rows[row][:])
}
