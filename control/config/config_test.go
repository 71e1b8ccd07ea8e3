package config

import (
	"strings"
	"testing"
	"time"

	"github.com/jrockway/segment-clock/control/edit"
	"github.com/jrockway/segment-clock/control/timestamp"
	"github.com/spf13/afero"
)

func TestMissingFile(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "/etc/clock.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	if cfg.PollInterval != want.PollInterval || cfg.Hold != want.Hold || cfg.Source != want.Source {
		t.Errorf("defaults:\n  got: %+v\n want: %+v", cfg, want)
	}
	if got, want := cfg.ClockOptions().OverlayDuration, time.Second; got != want {
		t.Errorf("overlay duration:\n  got: %v\n want: %v", got, want)
	}
	if got, want := cfg.ButtonConfig().Debounce, 50*time.Millisecond; got != want {
		t.Errorf("debounce:\n  got: %v\n want: %v", got, want)
	}
	if !cfg.HasDisplay(DisplayMAX7219) || cfg.HasDisplay(DisplayMatrix) {
		t.Errorf("displays: %v", cfg.Displays)
	}
}

func TestEmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/clock.yaml", nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(fs, "/clock.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, want := cfg.Brightness, edit.MaxBrightness; got != want {
		t.Errorf("brightness:\n  got: %v\n want: %v", got, want)
	}
}

func TestOverlay(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `
poll_interval_ms: 5
overlay_ms: 1500
blink_ms: 250
debounce_ms: 0
hold_ms: 1000
brightness: 3
legacy_wrap: true
charge_text: LO BATT
seed_time: "2023-07-04 09:05:03"
location: UTC
mode_pin: GPIO60
select_pin: GPIO48
source: gps
gpsd_addr: gps.local:2947
chrony_addr: localhost:323
displays: [max7219, matrix]
`
	if err := afero.WriteFile(fs, "/clock.yaml", []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(fs, "/clock.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	durations := []struct {
		name      string
		got, want time.Duration
	}{
		{"poll interval", cfg.PollInterval, 5 * time.Millisecond},
		{"overlay", cfg.OverlayDuration, 1500 * time.Millisecond},
		{"blink", cfg.BlinkPeriod, 250 * time.Millisecond},
		{"debounce", cfg.Debounce, 0},
		{"hold", cfg.Hold, time.Second},
	}
	for _, d := range durations {
		if d.got != d.want {
			t.Errorf("%s:\n  got: %v\n want: %v", d.name, d.got, d.want)
		}
	}
	if got, want := cfg.Brightness, 3; got != want {
		t.Errorf("brightness:\n  got: %v\n want: %v", got, want)
	}
	if got, want := cfg.Rules, edit.Legacy; got != want {
		t.Errorf("rules:\n  got: %v\n want: %v", got, want)
	}
	if got, want := cfg.ChargeText, "LO BATT"; got != want {
		t.Errorf("charge text:\n  got: %v\n want: %v", got, want)
	}
	wantSeed := timestamp.Timestamp{Year: 2023, Month: 7, Day: 4, Hour: 9, Minute: 5, Second: 3}
	if cfg.SeedTime == nil || *cfg.SeedTime != wantSeed {
		t.Errorf("seed time:\n  got: %v\n want: %v", cfg.SeedTime, wantSeed)
	}
	if got, want := cfg.Location, time.UTC; got != want {
		t.Errorf("location:\n  got: %v\n want: %v", got, want)
	}
	strs := []struct {
		name, got, want string
	}{
		{"mode pin", cfg.ModePin, "GPIO60"},
		{"select pin", cfg.SelectPin, "GPIO48"},
		{"source", cfg.Source, SourceGPS},
		{"gpsd", cfg.GPSDAddr, "gps.local:2947"},
		{"chrony", cfg.ChronyAddr, "localhost:323"},
		{"max7219 device", cfg.MAX7219Device, "/dev/spidev0.0"},
	}
	for _, s := range strs {
		if s.got != s.want {
			t.Errorf("%s:\n  got: %v\n want: %v", s.name, s.got, s.want)
		}
	}
	if !cfg.HasDisplay(DisplayMatrix) {
		t.Errorf("displays: %v", cfg.Displays)
	}
	opts := cfg.ClockOptions()
	if opts.Rules != edit.Legacy || opts.Brightness != 3 || opts.ChargeText != "LO BATT" {
		t.Errorf("clock options: %+v", opts)
	}
}

func TestErrors(t *testing.T) {
	testData := []struct {
		content string
		field   string
	}{
		{"brightness: 16", "brightness"},
		{"brightness: -1", "brightness"},
		{"overlay_ms: -5", "overlay_ms"},
		{"debounce_ms: -1", "debounce_ms"},
		{"source: sundial", "source"},
		{"charge_text: WAX", "charge_text"},
		{"displays: [nixie]", "displays"},
		{"seed_time: yesterday", "seed_time"},
		{"location: Mars/Olympus_Mons", "location"},
		{"select_pin: P9_12", "select_pin"},
		{"brightnes: 3", "brightnes"},
		{"brightness: [", "yaml"},
	}
	for _, test := range testData {
		t.Run(test.content, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if err := afero.WriteFile(fs, "/clock.yaml", []byte(test.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(fs, "/clock.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), test.field) {
				t.Errorf("error should name %s: %v", test.field, err)
			}
		})
	}
}
