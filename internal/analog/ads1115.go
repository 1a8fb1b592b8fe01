package analog

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// ADS1115 registers and config bits.
const (
	ads1115RegConversion = 0x00
	ads1115RegConfig     = 0x01

	ads1115OS         = 1 << 15
	ads1115PGA4096    = 0x1 << 9 // ±4.096V full scale
	ads1115SingleShot = 1 << 8
	ads1115DR860      = 0x7 << 5
	ads1115CompOff    = 0x3

	// DefaultADS1115Addr is the address with ADDR tied to ground.
	DefaultADS1115Addr = 0x48
)

// hostInit loads the periph drivers that register the I2C buses.
var hostInit = func() error {
	_, err := host.Init()
	return err
}

// ADS1115 reads one single-ended channel of a TI ADS1115 over I2C.
type ADS1115 struct {
	bus     i2c.BusCloser
	dev     *i2c.Dev
	channel int
	// counts at the reference voltage, used to stretch readings onto 0..FullScale
	maxCounts uint32
}

// NewADS1115 opens the I2C bus and configures single-shot reads of channel
// (0-3) referenced to vref volts.
func NewADS1115(busName string, addr uint16, channel int, vref float64) (*ADS1115, error) {
	if channel < 0 || channel > 3 {
		return nil, fmt.Errorf("ads1115: channel %d out of range", channel)
	}
	if vref <= 0 || vref > 4.096 {
		return nil, fmt.Errorf("ads1115: vref %.3fV out of range", vref)
	}

	if err := hostInit(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	return &ADS1115{
		bus:       bus,
		dev:       &i2c.Dev{Bus: bus, Addr: addr},
		channel:   channel,
		maxCounts: uint32(vref / 4.096 * 32767),
	}, nil
}

// Read triggers a conversion and returns it scaled to [0, FullScale].
func (a *ADS1115) Read() (uint16, error) {
	cfg := uint16(ads1115OS | (0x4+a.channel)<<12 | ads1115PGA4096 | ads1115SingleShot | ads1115DR860 | ads1115CompOff)
	if err := a.dev.Tx([]byte{ads1115RegConfig, byte(cfg >> 8), byte(cfg)}, nil); err != nil {
		return 0, fmt.Errorf("ads1115 start conversion: %w", err)
	}

	if err := a.waitReady(); err != nil {
		return 0, err
	}

	buf := make([]byte, 2)
	if err := a.dev.Tx([]byte{ads1115RegConversion}, buf); err != nil {
		return 0, fmt.Errorf("ads1115 read conversion: %w", err)
	}

	return countsToRaw(int16(uint16(buf[0])<<8|uint16(buf[1])), a.maxCounts), nil
}

// waitReady polls the OS bit until the conversion completes.
func (a *ADS1115) waitReady() error {
	buf := make([]byte, 2)
	for i := 0; i < 10; i++ {
		if err := a.dev.Tx([]byte{ads1115RegConfig}, buf); err != nil {
			return fmt.Errorf("ads1115 read config: %w", err)
		}
		if buf[0]&0x80 != 0 {
			return nil
		}
		time.Sleep(500 * time.Microsecond)
	}
	return errors.New("ads1115: conversion timeout")
}

// Close releases the I2C bus.
func (a *ADS1115) Close() error {
	return a.bus.Close()
}

// countsToRaw clamps a signed conversion to [0, maxCounts] and stretches it
// onto [0, FullScale].
func countsToRaw(counts int16, maxCounts uint32) uint16 {
	if counts <= 0 || maxCounts == 0 {
		return 0
	}
	c := uint32(counts)
	if c >= maxCounts {
		return FullScale
	}
	return uint16(c * FullScale / maxCounts)
}
