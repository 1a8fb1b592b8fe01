// Package display drives a two-line, sixteen-column character display.
package display

import "strings"

// Geometry of the character display.
const (
	Rows    = 2
	Columns = 16
)

// Display is a two-line character display.
type Display interface {
	// Clear blanks the whole display.
	Clear() error

	// ClearLine blanks one row.
	ClearLine(row int) error

	// Print writes text at (row, col). Text past the last column is dropped.
	Print(text string, row, col int) error

	// Close releases the bus.
	Close() error
}

// Truncate cuts text to fit from col to the end of a row.
func Truncate(text string, col int) string {
	room := Columns - col
	if room <= 0 {
		return ""
	}
	r := []rune(text)
	if len(r) > room {
		r = r[:room]
	}
	return string(r)
}

// blank is one full row of spaces.
var blank = strings.Repeat(" ", Columns)

// Render clears and rewrites both rows.
func Render(d Display, lines [Rows]string) error {
	for row, text := range lines {
		if err := d.ClearLine(row); err != nil {
			return err
		}
		if text == "" {
			continue
		}
		if err := d.Print(text, row, 0); err != nil {
			return err
		}
	}
	return nil
}

// ShowError replaces the screen with a two-line error message.
func ShowError(d Display, line1, line2 string) error {
	if err := d.Clear(); err != nil {
		return err
	}
	if err := d.Print(line1, 0, 0); err != nil {
		return err
	}
	return d.Print(line2, 1, 0)
}
