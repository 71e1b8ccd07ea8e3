// Package button turns the level of a push button into click and hold gestures.
//
// A press is debounced, then timed.  If it is still down when the hold threshold passes, a Hold is
// reported right away (the user sees the screen change without letting go).  If it is released
// before that, a Click is reported on release.  One press never produces both.
package button

import (
	"fmt"
	"time"

	"github.com/jrockway/segment-clock/control/mode"
	"periph.io/x/conn/v3/gpio"
)

// Gesture is what one press of a button turned out to be.
type Gesture int

const (
	None Gesture = iota
	Click
	Hold
)

func (g Gesture) String() string {
	switch g {
	case None:
		return "none"
	case Click:
		return "click"
	case Hold:
		return "hold"
	default:
		return fmt.Sprintf("gesture(%d)", int(g))
	}
}

// Config sets the timing of gesture recognition.
type Config struct {
	// Debounce is how long the pin has to stay at a new level before the change is believed.
	Debounce time.Duration
	// Hold is how long a press has to last to count as a hold.
	Hold time.Duration
}

// DefaultConfig is a reasonable starting point.  A zero Hold is replaced with DefaultConfig.Hold;
// a zero Debounce means no debouncing.
var DefaultConfig = Config{
	Debounce: 50 * time.Millisecond,
	Hold:     800 * time.Millisecond,
}

// Button classifies the presses of one button.  Poll has to be called regularly; gestures are
// recognized only as fast as it is called.
type Button struct {
	pin gpio.PinIn
	cfg Config

	raw      bool      // last level read, true for pressed
	rawSince time.Time // when raw last changed
	pressed  bool      // debounced level
	downAt   time.Time // when the current press started
	held     bool      // a Hold has been reported for the current press
}

// New configures pin as a pulled-up input, with the button connecting it to ground.
func New(pin gpio.PinIn, cfg Config) (*Button, error) {
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	if cfg.Hold <= 0 {
		cfg.Hold = DefaultConfig.Hold
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure %s as input: %w", pin, err)
	}
	return &Button{pin: pin, cfg: cfg}, nil
}

// Poll samples the pin and returns the gesture completed by this sample, if any.
func (b *Button) Poll(now time.Time) Gesture {
	return b.update(now, b.pin.Read() == gpio.Low)
}

func (b *Button) update(now time.Time, down bool) Gesture {
	if down != b.raw {
		b.raw = down
		b.rawSince = now
	}
	if b.raw != b.pressed && now.Sub(b.rawSince) >= b.cfg.Debounce {
		b.pressed = b.raw
		if b.pressed {
			b.downAt = b.rawSince
			b.held = false
		} else if !b.held {
			return Click
		}
	}
	if b.pressed && !b.held && now.Sub(b.downAt) >= b.cfg.Hold {
		b.held = true
		return Hold
	}
	return None
}

// Panel is the clock's pair of buttons.
type Panel struct {
	Mode   *Button
	Select *Button
}

// Poll samples both buttons and returns their gestures as state machine events, mode button
// first.
func (p *Panel) Poll(now time.Time) []mode.Event {
	var events []mode.Event
	if p.Mode != nil {
		switch p.Mode.Poll(now) {
		case Click:
			events = append(events, mode.ModeClick)
		case Hold:
			events = append(events, mode.ModeHold)
		}
	}
	if p.Select != nil {
		switch p.Select.Poll(now) {
		case Click:
			events = append(events, mode.SelectClick)
		case Hold:
			events = append(events, mode.SelectHold)
		}
	}
	return events
}
