package sensor

import (
	"errors"
	"math"
	"testing"
)

func frame(status byte, rawRH, rawT uint32) []byte {
	b := []byte{
		status,
		byte(rawRH >> 12),
		byte(rawRH >> 4),
		byte(rawRH<<4) | byte(rawT>>16&0x0F),
		byte(rawT >> 8),
		byte(rawT),
		0,
	}
	b[6] = crc8(b[:6])
	return b
}

func TestDecodeDHT20(t *testing.T) {
	// 50% RH, 25°C: rawT = (25+50)/200 * 2^20
	m, err := decodeDHT20(frame(0x1C, 1<<19, 393216))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Valid {
		t.Fatal("expected valid measurement")
	}
	if math.Abs(m.Humidity-50) > 1e-9 {
		t.Errorf("humidity: got %v, want 50", m.Humidity)
	}
	if math.Abs(m.Temperature-25) > 1e-9 {
		t.Errorf("temperature: got %v, want 25", m.Temperature)
	}
}

func TestDecodeDHT20CRCMismatch(t *testing.T) {
	b := frame(0x1C, 1<<19, 393216)
	b[6] ^= 0xFF
	m, err := decodeDHT20(b)
	if err == nil {
		t.Error("expected crc error")
	}
	if m.Valid {
		t.Error("measurement must be absent on crc error")
	}
}

func TestDecodeDHT20ShortFrame(t *testing.T) {
	if _, err := decodeDHT20([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for short frame")
	}
}

func TestCRC8KnownVector(t *testing.T) {
	// CRC-8/NRSC-5 style check value for poly 0x31 init 0xFF over 0xBEEF.
	if got := crc8([]byte{0xBE, 0xEF}); got != 0x92 {
		t.Errorf("crc8(BEEF): got %#x, want 0x92", got)
	}
}

func TestMeasurementString(t *testing.T) {
	if got := Absent.String(); got != "absent" {
		t.Errorf("got %q", got)
	}
	if got := Reading(25.46, 40).String(); got != "25.5°C 40.0%" {
		t.Errorf("got %q", got)
	}
}

func TestFakeSequence(t *testing.T) {
	f := NewFake(Reading(20, 40), Reading(21, 41))
	f.Errors = []error{nil, nil, errors.New("i2c nack")}

	m, err := f.Measure()
	if err != nil || m.Temperature != 20 {
		t.Fatalf("call 1: got %v, %v", m, err)
	}
	m, err = f.Measure()
	if err != nil || m.Temperature != 21 {
		t.Fatalf("call 2: got %v, %v", m, err)
	}
	if _, err = f.Measure(); err == nil {
		t.Fatal("call 3: expected error")
	}
	if f.Calls != 3 {
		t.Errorf("expected 3 calls, got %d", f.Calls)
	}
}

// failHostInit makes the periph host init fail and reports whether it ran.
func failHostInit(t *testing.T, err error) *bool {
	t.Helper()
	called := new(bool)
	orig := hostInit
	hostInit = func() error {
		*called = true
		return err
	}
	t.Cleanup(func() { hostInit = orig })
	return called
}

func TestNewDHT20InitsHostBeforeBus(t *testing.T) {
	errNoDrivers := errors.New("no drivers loaded")
	called := failHostInit(t, errNoDrivers)

	_, err := NewDHT20("", DefaultDHT20Addr)
	if !*called {
		t.Fatal("host drivers were not initialised")
	}
	if !errors.Is(err, errNoDrivers) {
		t.Errorf("expected host init error, got %v", err)
	}
}
