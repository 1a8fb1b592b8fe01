package analog

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
)

// SerialADC asks a microcontroller for samples over a serial line.
// Request: "A<channel>\n". Response: one decimal sample in [0, 65535] followed
// by a newline.
type SerialADC struct {
	port    serial.Port
	reader  *bufio.Reader
	channel int
}

// NewSerialADC opens portName at baud and reads the given channel.
func NewSerialADC(portName string, baud, channel int) (*SerialADC, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return newSerialADC(port, channel), nil
}

func newSerialADC(port serial.Port, channel int) *SerialADC {
	return &SerialADC{
		port:    port,
		reader:  bufio.NewReader(port),
		channel: channel,
	}
}

// Read requests and parses one sample.
func (s *SerialADC) Read() (uint16, error) {
	if _, err := fmt.Fprintf(s.port, "A%d\n", s.channel); err != nil {
		return 0, fmt.Errorf("serial adc request: %w", err)
	}
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return 0, fmt.Errorf("serial adc response: %w", err)
	}
	return parseSample(line)
}

// Close closes the serial port.
func (s *SerialADC) Close() error {
	return s.port.Close()
}

func parseSample(line string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(line), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("parse sample %q: %w", strings.TrimSpace(line), err)
	}
	return uint16(v), nil
}
