// Package rtc provides the places the clock can get the time from and write edits back to.
package rtc

import (
	"fmt"
	"time"

	"github.com/jrockway/segment-clock/control/timestamp"
	"periph.io/x/conn/v3/i2c"
)

// DS3231Addr is the fixed I2C address of the DS3231.
const DS3231Addr = 0x68

// Register is a DS3231 register address.
type Register uint8

const (
	RegisterSeconds Register = 0x00
	RegisterMinutes Register = 0x01
	RegisterHours   Register = 0x02
	RegisterWeekday Register = 0x03
	RegisterDate    Register = 0x04
	RegisterMonth   Register = 0x05
	RegisterYear    Register = 0x06
	RegisterControl Register = 0x0e
	RegisterStatus  Register = 0x0f
)

const (
	statusOSF    = 0x80 // oscillator stopped; the time is not to be trusted
	controlEOSC  = 0x80 // set to stop the oscillator on battery
	hour12       = 0x40
	hourPM       = 0x20
	monthCentury = 0x80
)

// DS3231 is a battery-backed real time clock on an I2C bus.
//
// The DS3231 stores each field as BCD in its own register and does not check that the date is
// valid, so the fields of a timestamp are written exactly as given, as long as each fits in two
// decimal digits.  Years 2000 through 2199 are representable.
type DS3231 struct {
	dev i2c.Dev
}

// NewDS3231 returns the DS3231 on bus.  Nothing is sent to the device.
func NewDS3231(bus i2c.Bus) *DS3231 {
	return &DS3231{dev: i2c.Dev{Bus: bus, Addr: DS3231Addr}}
}

func (d *DS3231) String() string {
	return fmt.Sprintf("ds3231 on %s", d.dev.Bus)
}

// ReadRegisters reads len(buf) consecutive registers starting at r.
func (d *DS3231) ReadRegisters(r Register, buf []byte) error {
	if err := d.dev.Tx([]byte{byte(r)}, buf); err != nil {
		return fmt.Errorf("tx: %w", err)
	}
	return nil
}

// WriteRegisters writes data to consecutive registers starting at r.
func (d *DS3231) WriteRegisters(r Register, data ...byte) error {
	w := make([]byte, 1, len(data)+1)
	w[0] = byte(r)
	w = append(w, data...)
	if err := d.dev.Tx(w, nil); err != nil {
		return fmt.Errorf("tx: %w", err)
	}
	return nil
}

func fromBCD(b byte) int {
	return int(b>>4)*10 + int(b&0x0f)
}

func toBCD(name string, v int) (byte, error) {
	if v < 0 || v > 99 {
		return 0, fmt.Errorf("%s %d does not fit in a bcd register", name, v)
	}
	return byte(v/10)<<4 | byte(v%10), nil
}

// Now reads the time.
func (d *DS3231) Now() (timestamp.Timestamp, error) {
	var buf [7]byte
	if err := d.ReadRegisters(RegisterSeconds, buf[:]); err != nil {
		return timestamp.Timestamp{}, fmt.Errorf("read time registers: %w", err)
	}
	ts := timestamp.Timestamp{
		Second: fromBCD(buf[RegisterSeconds] & 0x7f),
		Minute: fromBCD(buf[RegisterMinutes] & 0x7f),
		Day:    fromBCD(buf[RegisterDate] & 0x3f),
		Month:  fromBCD(buf[RegisterMonth] & 0x1f),
		Year:   2000 + fromBCD(buf[RegisterYear]),
	}
	if buf[RegisterMonth]&monthCentury != 0 {
		ts.Year += 100
	}
	h := buf[RegisterHours]
	if h&hour12 != 0 {
		// 12-hour mode: 12 AM is midnight, 12 PM is noon.
		ts.Hour = fromBCD(h&0x1f) % 12
		if h&hourPM != 0 {
			ts.Hour += 12
		}
	} else {
		ts.Hour = fromBCD(h & 0x3f)
	}
	return ts, nil
}

// Set writes ts to the clock, in 24-hour mode, and clears the oscillator-stopped flag.
func (d *DS3231) Set(ts timestamp.Timestamp) error {
	year := ts.Year - 2000
	var century byte
	if year >= 100 {
		year -= 100
		century = monthCentury
	}
	if year < 0 || year > 99 {
		return fmt.Errorf("year %d is outside the range of the ds3231", ts.Year)
	}
	var regs [7]byte
	for _, f := range []struct {
		r    Register
		name string
		v    int
	}{
		{RegisterSeconds, "second", ts.Second},
		{RegisterMinutes, "minute", ts.Minute},
		{RegisterHours, "hour", ts.Hour},
		{RegisterWeekday, "weekday", int(time.Date(ts.Year, time.Month(ts.Month), ts.Day, 0, 0, 0, 0, time.UTC).Weekday()) + 1},
		{RegisterDate, "day", ts.Day},
		{RegisterMonth, "month", ts.Month},
		{RegisterYear, "year", year},
	} {
		b, err := toBCD(f.name, f.v)
		if err != nil {
			return fmt.Errorf("encode %v: %w", ts, err)
		}
		regs[f.r] = b
	}
	regs[RegisterMonth] |= century
	if err := d.WriteRegisters(RegisterSeconds, regs[:]...); err != nil {
		return fmt.Errorf("write time registers: %w", err)
	}

	var status [1]byte
	if err := d.ReadRegisters(RegisterStatus, status[:]); err != nil {
		return fmt.Errorf("read status register: %w", err)
	}
	if status[0]&statusOSF != 0 {
		if err := d.WriteRegisters(RegisterStatus, status[0]&^statusOSF); err != nil {
			return fmt.Errorf("clear oscillator stop flag: %w", err)
		}
	}
	return nil
}

// LostPower reports whether the oscillator has stopped since the time was last set, usually
// because the backup battery is dead or missing.  It is also the cheapest way to see if the chip
// is there at all.
func (d *DS3231) LostPower() (bool, error) {
	var status [1]byte
	if err := d.ReadRegisters(RegisterStatus, status[:]); err != nil {
		return false, fmt.Errorf("read status register: %w", err)
	}
	return status[0]&statusOSF != 0, nil
}

// EnableOscillator makes sure the clock keeps running on battery power.
func (d *DS3231) EnableOscillator() error {
	var control [1]byte
	if err := d.ReadRegisters(RegisterControl, control[:]); err != nil {
		return fmt.Errorf("read control register: %w", err)
	}
	if control[0]&controlEOSC == 0 {
		return nil
	}
	if err := d.WriteRegisters(RegisterControl, control[0]&^controlEOSC); err != nil {
		return fmt.Errorf("write control register: %w", err)
	}
	return nil
}
