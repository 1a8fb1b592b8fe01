package pixel

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// SPI clock at which three SPI bits last one WS2812 bit (1.25µs).
const ws2812Clock = 2400 * physic.KiloHertz

// Low time after a frame that latches the colour (>80µs at 2.4MHz).
const ws2812ResetBytes = 24

// WS2812 drives one WS2812 LED from the SPI MOSI line.
type WS2812 struct {
	port spi.PortCloser
	conn spi.Conn
}

// NewWS2812 opens the SPI port (e.g. "SPI0.0").
func NewWS2812(portName string) (*WS2812, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", portName, err)
	}
	conn, err := port.Connect(ws2812Clock, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connect spi: %w", err)
	}
	return &WS2812{port: port, conn: conn}, nil
}

// Write shows c.
func (w *WS2812) Write(c Color) error {
	if err := w.conn.Tx(encodeWS2812(c), nil); err != nil {
		return fmt.Errorf("ws2812 write: %w", err)
	}
	return nil
}

// Close turns the LED off and releases the SPI port.
func (w *WS2812) Close() error {
	if err := w.Write(Color{}); err != nil {
		w.port.Close()
		return err
	}
	return w.port.Close()
}

// encodeWS2812 expands a GRB frame so that every data bit becomes the SPI
// pattern 110 (one) or 100 (zero), followed by the latch gap.
func encodeWS2812(c Color) []byte {
	out := make([]byte, 0, 9+ws2812ResetBytes)
	var acc uint32
	var n uint
	for _, b := range []byte{c.G, c.R, c.B} {
		for i := 7; i >= 0; i-- {
			pattern := uint32(0b100)
			if b&(1<<uint(i)) != 0 {
				pattern = 0b110
			}
			acc = acc<<3 | pattern
			n += 3
			if n >= 8 {
				n -= 8
				out = append(out, byte(acc>>n))
			}
		}
	}
	return append(out, make([]byte, ws2812ResetBytes)...)
}
