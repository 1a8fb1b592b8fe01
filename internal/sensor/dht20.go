package sensor

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// DefaultDHT20Addr is the fixed I2C address of the DHT20.
const DefaultDHT20Addr = 0x38

const (
	dht20StatusCmd     = 0x71
	dht20StatusBusy    = 0x80
	dht20StatusCalMask = 0x18
)

var dht20Trigger = []byte{0xAC, 0x33, 0x00}

// hostInit loads the periph drivers that register the I2C buses.
var hostInit = func() error {
	_, err := host.Init()
	return err
}

// DHT20 is an Aosong DHT20 temperature/humidity sensor on I2C.
type DHT20 struct {
	bus   i2c.BusCloser
	dev   *i2c.Dev
	sleep func(time.Duration)
}

// NewDHT20 opens the bus and checks the sensor reports itself calibrated.
func NewDHT20(busName string, addr uint16) (*DHT20, error) {
	if err := hostInit(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	d := &DHT20{
		bus:   bus,
		dev:   &i2c.Dev{Bus: bus, Addr: addr},
		sleep: time.Sleep,
	}

	status, err := d.status()
	if err != nil {
		bus.Close()
		return nil, err
	}
	if status&dht20StatusCalMask != dht20StatusCalMask {
		bus.Close()
		return nil, fmt.Errorf("dht20: not calibrated (status %#x)", status)
	}
	return d, nil
}

func (d *DHT20) status() (byte, error) {
	buf := make([]byte, 1)
	if err := d.dev.Tx([]byte{dht20StatusCmd}, buf); err != nil {
		return 0, fmt.Errorf("dht20 status: %w", err)
	}
	return buf[0], nil
}

// Measure triggers a conversion and decodes it.
func (d *DHT20) Measure() (Measurement, error) {
	if err := d.dev.Tx(dht20Trigger, nil); err != nil {
		return Absent, fmt.Errorf("dht20 trigger: %w", err)
	}
	d.sleep(80 * time.Millisecond)

	buf := make([]byte, 7)
	for i := 0; ; i++ {
		if err := d.dev.Tx(nil, buf); err != nil {
			return Absent, fmt.Errorf("dht20 read: %w", err)
		}
		if buf[0]&dht20StatusBusy == 0 {
			break
		}
		if i >= 5 {
			return Absent, errors.New("dht20: measurement timeout")
		}
		d.sleep(10 * time.Millisecond)
	}
	return decodeDHT20(buf)
}

// Close releases the I2C bus.
func (d *DHT20) Close() error {
	return d.bus.Close()
}

// decodeDHT20 converts a 7-byte status+data+CRC frame.
func decodeDHT20(b []byte) (Measurement, error) {
	if len(b) != 7 {
		return Absent, fmt.Errorf("dht20: frame length %d", len(b))
	}
	if crc := crc8(b[:6]); crc != b[6] {
		return Absent, fmt.Errorf("dht20: crc mismatch (got %#x, want %#x)", b[6], crc)
	}

	rawRH := uint32(b[1])<<12 | uint32(b[2])<<4 | uint32(b[3])>>4
	rawT := uint32(b[3]&0x0F)<<16 | uint32(b[4])<<8 | uint32(b[5])

	return Measurement{
		Humidity:    float64(rawRH) / (1 << 20) * 100,
		Temperature: float64(rawT)/(1<<20)*200 - 50,
		Valid:       true,
	}, nil
}

// crc8 is CRC-8 with polynomial 0x31 and initial value 0xFF.
func crc8(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
