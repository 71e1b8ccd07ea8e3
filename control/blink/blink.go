// Package blink keeps the on/off phase used to highlight the field being edited.
package blink

import "time"

// DefaultPeriod is how long each half of the blink cycle lasts.
const DefaultPeriod = 500 * time.Millisecond

// Scheduler flips a visibility flag every period, measured from the last flip.  Time is passed in
// as a millisecond counter that is allowed to wrap; only differences between readings are used.
//
// One Scheduler is shared by whatever field is blinking, so Tick should be called at most once
// per rendered frame.
type Scheduler struct {
	period   uint32
	lastFlip uint32
	visible  bool
}

// New returns a Scheduler that starts in the visible phase.
func New(period time.Duration) *Scheduler {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Scheduler{period: uint32(period / time.Millisecond), visible: true}
}

// Tick advances the scheduler to nowMs and returns whether the blinking field should be drawn.
func (s *Scheduler) Tick(nowMs uint32) bool {
	if nowMs-s.lastFlip >= s.period {
		s.visible = !s.visible
		s.lastFlip = nowMs
	}
	return s.visible
}

// Visible returns the current phase without advancing the timer.
func (s *Scheduler) Visible() bool {
	return s.visible
}
