package display

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// DefaultGroveAddr is the I2C address of the Grove 16x2 OLED.
const DefaultGroveAddr = 0x3E

// Control bytes preceding a command or a data byte.
const (
	groveCommand = 0x00
	groveData    = 0x40

	groveClear   = 0x01
	groveRowZero = 0x80
	groveRowOne  = 0xC0
)

// groveInit is the controller power-up sequence.
var groveInit = []byte{
	0x2A, 0x71, 0x5C, 0x28, 0x08, 0x2A, 0x79,
	0xD5, 0x70, 0x78, 0x09, 0x06, 0x72, 0x00,
	0x2A, 0x79, 0xDA, 0x10, 0xDC, 0x00, 0x81,
	0x7F, 0xD9, 0xF1, 0xDB, 0x40, 0x78, 0x28,
	0x01, 0x80, 0x0C,
}

// hostInit loads the periph drivers that register the I2C buses.
var hostInit = func() error {
	_, err := host.Init()
	return err
}

// Grove drives a Grove 16x2 OLED character display over I2C.
type Grove struct {
	bus   i2c.BusCloser
	dev   *i2c.Dev
	sleep func(time.Duration)
}

// NewGrove opens the bus and runs the initialisation sequence.
func NewGrove(busName string, addr uint16) (*Grove, error) {
	if err := hostInit(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	g := &Grove{
		bus:   bus,
		dev:   &i2c.Dev{Bus: bus, Addr: addr},
		sleep: time.Sleep,
	}
	if err := g.init(); err != nil {
		bus.Close()
		return nil, err
	}
	return g, nil
}

func (g *Grove) init() error {
	for _, cmd := range groveInit {
		if err := g.command(cmd); err != nil {
			return fmt.Errorf("oled init: %w", err)
		}
		g.sleep(5 * time.Millisecond)
	}
	return nil
}

func (g *Grove) command(cmd byte) error {
	return g.dev.Tx([]byte{groveCommand, cmd}, nil)
}

func (g *Grove) data(b byte) error {
	return g.dev.Tx([]byte{groveData, b}, nil)
}

// Clear blanks the whole display.
func (g *Grove) Clear() error {
	if err := g.command(groveClear); err != nil {
		return fmt.Errorf("oled clear: %w", err)
	}
	g.sleep(2 * time.Millisecond)
	return nil
}

// ClearLine blanks one row.
func (g *Grove) ClearLine(row int) error {
	return g.Print(blank, row, 0)
}

// Print writes text at (row, col).
func (g *Grove) Print(text string, row, col int) error {
	if row < 0 || row >= Rows || col < 0 || col >= Columns {
		return fmt.Errorf("oled print: position (%d,%d) out of range", row, col)
	}
	if err := g.command(cursorCommand(row, col)); err != nil {
		return fmt.Errorf("oled cursor: %w", err)
	}
	for _, b := range []byte(asciiOnly(Truncate(text, col))) {
		if err := g.data(b); err != nil {
			return fmt.Errorf("oled write: %w", err)
		}
	}
	return nil
}

// Close releases the I2C bus.
func (g *Grove) Close() error {
	return g.bus.Close()
}

func cursorCommand(row, col int) byte {
	if row == 0 {
		return groveRowZero + byte(col)
	}
	return groveRowOne + byte(col)
}

// asciiOnly replaces characters the controller's ROM cannot show.
func asciiOnly(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x20 || r > 0x7E {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return string(out)
}
