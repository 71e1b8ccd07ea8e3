// Package max7219 drives an 8 digit 7-segment display through a MAX7219 on SPI.
package max7219

import (
	"errors"
	"fmt"

	"github.com/fulr/spidev"
	"github.com/jrockway/segment-clock/control/segment"
)

// Registers.
const (
	RegNoop        = 0x00
	RegDigit0      = 0x01 // rightmost digit; digit 7 is register 0x08
	RegDecodeMode  = 0x09
	RegIntensity   = 0x0A
	RegScanLimit   = 0x0B
	RegShutdown    = 0x0C
	RegDisplayTest = 0x0F
)

// Digits is the number of digits the chip scans.
const Digits = 8

// ErrFull is returned when more characters are written than the display has digits.
var ErrFull = errors.New("max7219: display full")

// Transfer sends one 16-bit register write, register byte first.
type Transfer func(b []byte) error

// Display is a MAX7219 in no-decode mode.  Characters are written left to right starting at the
// leftmost digit.
type Display struct {
	xfer   Transfer
	cursor int
}

// New initializes the chip: all digits scanned, no BCD decoding, test mode off, and running.
func New(xfer Transfer) (*Display, error) {
	d := &Display{xfer: xfer}
	for _, w := range []struct {
		name     string
		reg, val byte
	}{
		{"scan limit", RegScanLimit, Digits - 1},
		{"decode mode", RegDecodeMode, 0x00},
		{"display test", RegDisplayTest, 0x00},
		{"shutdown", RegShutdown, 0x01},
	} {
		if err := d.write(w.reg, w.val); err != nil {
			return nil, fmt.Errorf("init %s: %w", w.name, err)
		}
	}
	return d, nil
}

// Open opens the spidev device at path, like /dev/spidev0.0, and initializes the chip on it.
func Open(path string) (*Display, error) {
	spi, err := spidev.NewSPIDevice(path)
	if err != nil {
		return nil, fmt.Errorf("open spi device %s: %w", path, err)
	}
	return New(func(b []byte) error {
		spi.Xfer(b)
		return nil
	})
}

func (d *Display) write(reg, val byte) error {
	return d.xfer([]byte{reg, val})
}

// Home moves the cursor to the leftmost digit.
func (d *Display) Home() error {
	d.cursor = 0
	return nil
}

// SetBrightness sets the intensity register, 0 (dimmest) through 15.
func (d *Display) SetBrightness(level int) error {
	if level < 0 {
		level = 0
	}
	if level > 15 {
		level = 15
	}
	if err := d.write(RegIntensity, byte(level)); err != nil {
		return fmt.Errorf("write intensity: %w", err)
	}
	return nil
}

// WriteGlyph draws g at the cursor and moves the cursor right.
func (d *Display) WriteGlyph(g rune) error {
	if d.cursor >= Digits {
		return ErrFull
	}
	reg := byte(RegDigit0 + Digits - 1 - d.cursor)
	if err := d.write(reg, segment.Encode(g)); err != nil {
		return fmt.Errorf("write digit %d: %w", d.cursor, err)
	}
	d.cursor++
	return nil
}

// WriteText draws each character of s.
func (d *Display) WriteText(s string) error {
	for _, r := range s {
		if err := d.WriteGlyph(r); err != nil {
			return err
		}
	}
	return nil
}

// Blank clears every digit except the rightmost decimal point, so that someone looking at the
// clock can tell the program exited but the board still has power.
func (d *Display) Blank() error {
	for i := 0; i < Digits; i++ {
		var v byte
		if i == 0 {
			v = segment.DP
		}
		if err := d.write(byte(RegDigit0+i), v); err != nil {
			return fmt.Errorf("blank digit %d: %w", i, err)
		}
	}
	return nil
}
