// Package config loads the clock's settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jrockway/segment-clock/control/blink"
	"github.com/jrockway/segment-clock/control/button"
	"github.com/jrockway/segment-clock/control/clock"
	"github.com/jrockway/segment-clock/control/edit"
	"github.com/jrockway/segment-clock/control/segment"
	"github.com/jrockway/segment-clock/control/timestamp"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Clock sources.
const (
	SourceDS3231 = "ds3231"
	SourceSystem = "system"
	SourceGPS    = "gps"
)

// Displays.  The preview image is always drawn and needs no entry.
const (
	DisplayMAX7219 = "max7219"
	DisplayMatrix  = "matrix"
)

// Config is everything the binary needs to build the clock.
type Config struct {
	PollInterval    time.Duration
	OverlayDuration time.Duration
	BlinkPeriod     time.Duration
	Debounce        time.Duration
	Hold            time.Duration

	Brightness int
	Rules      edit.Rules
	ChargeText string

	// SeedTime is written to the clock source at startup if it reports that it lost power.  Nil
	// means the host's time.
	SeedTime *timestamp.Timestamp
	Location *time.Location

	ModePin   string
	SelectPin string

	Source        string
	I2CBus        string // empty for the first bus
	GPSDAddr      string
	ChronyAddr    string // empty to skip asking chronyd
	Displays      []string
	MAX7219Device string
}

// Default returns the configuration used when there is no file.
func Default() *Config {
	return &Config{
		PollInterval:    clock.DefaultPollInterval,
		OverlayDuration: clock.DefaultOverlayDuration,
		BlinkPeriod:     blink.DefaultPeriod,
		Debounce:        button.DefaultConfig.Debounce,
		Hold:            button.DefaultConfig.Hold,
		Brightness:      edit.MaxBrightness,
		Rules:           edit.Wrapped,
		ChargeText:      clock.DefaultChargeText,
		Location:        time.Local,
		ModePin:         "P9_12",
		SelectPin:       "P9_14",
		Source:          SourceDS3231,
		GPSDAddr:        "localhost:2947",
		Displays:        []string{DisplayMAX7219},
		MAX7219Device:   "/dev/spidev0.0",
	}
}

type yamlConfig struct {
	PollIntervalMs int      `yaml:"poll_interval_ms"`
	OverlayMs      int      `yaml:"overlay_ms"`
	BlinkMs        int      `yaml:"blink_ms"`
	DebounceMs     *int     `yaml:"debounce_ms"`
	HoldMs         int      `yaml:"hold_ms"`
	Brightness     int      `yaml:"brightness"`
	LegacyWrap     bool     `yaml:"legacy_wrap"`
	ChargeText     string   `yaml:"charge_text"`
	SeedTime       string   `yaml:"seed_time"`
	Location       string   `yaml:"location"`
	ModePin        string   `yaml:"mode_pin"`
	SelectPin      string   `yaml:"select_pin"`
	Source         string   `yaml:"source"`
	I2CBus         string   `yaml:"i2c_bus"`
	GPSDAddr       string   `yaml:"gpsd_addr"`
	ChronyAddr     string   `yaml:"chrony_addr"`
	Displays       []string `yaml:"displays"`
	MAX7219Device  string   `yaml:"max7219_device"`
}

// Load reads the YAML file at path from fs over the defaults.  A missing file is not an error.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var y yamlConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&y); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config yaml %s: %w", path, err)
	}
	if err := apply(cfg, y); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func millis(field string, ms int, dst *time.Duration) error {
	switch {
	case ms < 0:
		return fmt.Errorf("%s: %d must not be negative", field, ms)
	case ms > 0:
		*dst = time.Duration(ms) * time.Millisecond
	}
	return nil
}

func apply(cfg *Config, y yamlConfig) error {
	for _, d := range []struct {
		field string
		ms    int
		dst   *time.Duration
	}{
		{"poll_interval_ms", y.PollIntervalMs, &cfg.PollInterval},
		{"overlay_ms", y.OverlayMs, &cfg.OverlayDuration},
		{"blink_ms", y.BlinkMs, &cfg.BlinkPeriod},
		{"hold_ms", y.HoldMs, &cfg.Hold},
	} {
		if err := millis(d.field, d.ms, d.dst); err != nil {
			return err
		}
	}
	// Zero is a valid debounce time, so it has to be told apart from an absent value.
	if y.DebounceMs != nil {
		if *y.DebounceMs < 0 {
			return fmt.Errorf("debounce_ms: %d must not be negative", *y.DebounceMs)
		}
		cfg.Debounce = time.Duration(*y.DebounceMs) * time.Millisecond
	}

	if y.Brightness != 0 {
		if y.Brightness < edit.MinBrightness || y.Brightness > edit.MaxBrightness {
			return fmt.Errorf("brightness: %d is outside %d..%d", y.Brightness, edit.MinBrightness, edit.MaxBrightness)
		}
		cfg.Brightness = y.Brightness
	}
	if y.LegacyWrap {
		cfg.Rules = edit.Legacy
	}
	if y.ChargeText != "" {
		for _, r := range y.ChargeText {
			if !segment.Drawable(r) {
				return fmt.Errorf("charge_text: %q has no 7-segment shape", r)
			}
		}
		cfg.ChargeText = y.ChargeText
	}

	if y.Location != "" {
		loc, err := time.LoadLocation(y.Location)
		if err != nil {
			return fmt.Errorf("location: %w", err)
		}
		cfg.Location = loc
	}
	if y.SeedTime != "" {
		ts, err := timestamp.Parse(y.SeedTime)
		if err != nil {
			return fmt.Errorf("seed_time: %w", err)
		}
		cfg.SeedTime = &ts
	}

	for _, s := range []struct {
		v   string
		dst *string
	}{
		{y.ModePin, &cfg.ModePin},
		{y.SelectPin, &cfg.SelectPin},
		{y.I2CBus, &cfg.I2CBus},
		{y.GPSDAddr, &cfg.GPSDAddr},
		{y.ChronyAddr, &cfg.ChronyAddr},
		{y.MAX7219Device, &cfg.MAX7219Device},
	} {
		if s.v != "" {
			*s.dst = s.v
		}
	}
	if cfg.ModePin == cfg.SelectPin {
		return fmt.Errorf("select_pin: %q is also the mode pin", cfg.SelectPin)
	}

	switch y.Source {
	case "":
	case SourceDS3231, SourceSystem, SourceGPS:
		cfg.Source = y.Source
	default:
		return fmt.Errorf("source: unknown clock source %q", y.Source)
	}

	if y.Displays != nil {
		for _, d := range y.Displays {
			switch d {
			case DisplayMAX7219, DisplayMatrix:
			default:
				return fmt.Errorf("displays: unknown display %q", d)
			}
		}
		cfg.Displays = y.Displays
	}
	return nil
}

// HasDisplay reports whether the named display is configured.
func (c *Config) HasDisplay(name string) bool {
	for _, d := range c.Displays {
		if d == name {
			return true
		}
	}
	return false
}

// ClockOptions returns the control loop's settings.
func (c *Config) ClockOptions() clock.Options {
	return clock.Options{
		PollInterval:    c.PollInterval,
		OverlayDuration: c.OverlayDuration,
		BlinkPeriod:     c.BlinkPeriod,
		Brightness:      c.Brightness,
		Rules:           c.Rules,
		ChargeText:      c.ChargeText,
	}
}

// ButtonConfig returns the gesture timing for both buttons.
func (c *Config) ButtonConfig() button.Config {
	return button.Config{Debounce: c.Debounce, Hold: c.Hold}
}
