package rtc

import (
	"testing"

	"github.com/jrockway/segment-clock/control/timestamp"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestDS3231Now(t *testing.T) {
	testData := []struct {
		name string
		regs []byte
		want timestamp.Timestamp
	}{
		{
			name: "24 hour",
			regs: []byte{0x03, 0x05, 0x09, 0x03, 0x04, 0x07, 0x23},
			want: timestamp.Timestamp{Year: 2023, Month: 7, Day: 4, Hour: 9, Minute: 5, Second: 3},
		},
		{
			name: "12 hour pm",
			regs: []byte{0x59, 0x59, 0x40 | 0x20 | 0x11, 0x07, 0x31, 0x12, 0x99},
			want: timestamp.Timestamp{Year: 2099, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 59},
		},
		{
			name: "12 hour midnight",
			regs: []byte{0x00, 0x00, 0x40 | 0x12, 0x01, 0x01, 0x01, 0x00},
			want: timestamp.Timestamp{Year: 2000, Month: 1, Day: 1, Hour: 0},
		},
		{
			name: "next century",
			regs: []byte{0x00, 0x00, 0x00, 0x01, 0x01, 0x80 | 0x01, 0x00},
			want: timestamp.Timestamp{Year: 2100, Month: 1, Day: 1},
		},
	}
	for _, test := range testData {
		t.Run(test.name, func(t *testing.T) {
			bus := &i2ctest.Playback{Ops: []i2ctest.IO{
				{Addr: DS3231Addr, W: []byte{0x00}, R: test.regs},
			}}
			got, err := NewDS3231(bus).Now()
			if err != nil {
				t.Fatalf("now: %v", err)
			}
			if got != test.want {
				t.Errorf("now:\n  got: %v\n want: %v", got, test.want)
			}
			if err := bus.Close(); err != nil {
				t.Errorf("playback: %v", err)
			}
		})
	}
}

func TestDS3231Set(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		// 2024-07-04 is a Thursday, weekday register 5.
		{Addr: DS3231Addr, W: []byte{0x00, 0x03, 0x05, 0x09, 0x05, 0x04, 0x07, 0x24}},
		{Addr: DS3231Addr, W: []byte{0x0f}, R: []byte{0x88}},
		{Addr: DS3231Addr, W: []byte{0x0f, 0x08}},
	}}
	ts := timestamp.Timestamp{Year: 2024, Month: 7, Day: 4, Hour: 9, Minute: 5, Second: 3}
	if err := NewDS3231(bus).Set(ts); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("playback: %v", err)
	}
}

func TestDS3231SetLegacyValues(t *testing.T) {
	// Month 13 and hour 24 are stored as given; the chip does not check.
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: DS3231Addr, W: []byte{0x00, 0x00, 0x00, 0x24, 0x02, 0x01, 0x13, 0x23}},
		{Addr: DS3231Addr, W: []byte{0x0f}, R: []byte{0x00}},
	}}
	// 2023-13-01 normalizes to 2024-01-01, a Monday.
	ts := timestamp.Timestamp{Year: 2023, Month: 13, Day: 1, Hour: 24}
	if err := NewDS3231(bus).Set(ts); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("playback: %v", err)
	}
}

func TestDS3231SetOutOfRange(t *testing.T) {
	bus := &i2ctest.Playback{}
	for _, ts := range []timestamp.Timestamp{
		{Year: 1999, Month: 1, Day: 1},
		{Year: 2200, Month: 1, Day: 1},
		{Year: 2023, Month: 0, Day: 100},
		{Year: 2023, Month: -1, Day: 1},
	} {
		if err := NewDS3231(bus).Set(ts); err == nil {
			t.Errorf("set %v: expected error", ts)
		}
	}
}

func TestDS3231LostPower(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: DS3231Addr, W: []byte{0x0f}, R: []byte{0x80}},
		{Addr: DS3231Addr, W: []byte{0x0f}, R: []byte{0x08}},
	}}
	d := NewDS3231(bus)
	for i, want := range []bool{true, false} {
		got, err := d.LostPower()
		if err != nil {
			t.Fatalf("lost power %d: %v", i, err)
		}
		if got != want {
			t.Errorf("lost power %d:\n  got: %v\n want: %v", i, got, want)
		}
	}
	if err := bus.Close(); err != nil {
		t.Errorf("playback: %v", err)
	}
}

func TestDS3231EnableOscillator(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: DS3231Addr, W: []byte{0x0e}, R: []byte{0x9c}},
		{Addr: DS3231Addr, W: []byte{0x0e, 0x1c}},
		{Addr: DS3231Addr, W: []byte{0x0e}, R: []byte{0x1c}},
	}}
	d := NewDS3231(bus)
	if err := d.EnableOscillator(); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if err := d.EnableOscillator(); err != nil {
		t.Fatalf("enable again: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("playback: %v", err)
	}
}
