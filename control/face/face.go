// Package face turns the clock's state into the characters shown on the display.
package face

import (
	"fmt"
	"strings"

	"github.com/jrockway/segment-clock/control/mode"
	"github.com/jrockway/segment-clock/control/timestamp"
)

// Width is the number of character cells on the display.
const Width = 8

// Blank is drawn in place of a field during the off half of the blink.
const Blank = ' '

// Display is a character display with a cursor.  Home moves the cursor to the first cell;
// WriteGlyph and WriteText draw at the cursor and advance it.
//
// Generated mock using mockgen:
//  mockgen -source=face.go -destination=mock_display_test.go -package face
type Display interface {
	Home() error
	SetBrightness(level int) error
	WriteGlyph(g rune) error
	WriteText(s string) error
}

// Flusher is implemented by displays that buffer a frame and need to be told when it is complete.
type Flusher interface {
	Flush() error
}

// State is everything the renderer needs to draw one frame.
type State struct {
	Mode       mode.Mode
	FieldIndex int
	Time       timestamp.Timestamp
	Brightness int
	// Visible is the blink phase.  When false, the selected field is drawn blank.
	Visible bool
}

// Frame is one screenful.  Glyphs are written one at a time; Text, if set, is written as a single
// literal string after them.
type Frame struct {
	Brightness int
	Glyphs     []rune
	Text       string
}

func (f Frame) String() string {
	return string(f.Glyphs) + f.Text
}

type builder struct {
	glyphs []rune
}

// twoDigits writes the last two decimal digits of v, or two blanks if hidden.
func (b *builder) twoDigits(v int, hidden bool) {
	if hidden {
		b.glyphs = append(b.glyphs, Blank, Blank)
		return
	}
	v = (v%100 + 100) % 100
	b.glyphs = append(b.glyphs, rune('0'+v/10), rune('0'+v%10))
}

func (b *builder) sep(r rune) {
	b.glyphs = append(b.glyphs, r)
}

func (b *builder) blanks(n int) {
	for i := 0; i < n; i++ {
		b.glyphs = append(b.glyphs, Blank)
	}
}

// threeFields writes a, sep, b, sep, c.  Field number blink (0-2) is hidden when hide is true; -1
// hides nothing.
func threeFields(vals [3]int, sep rune, blink int, hide bool) []rune {
	b := &builder{}
	for i, v := range vals {
		b.twoDigits(v, hide && i == blink)
		if i < len(vals)-1 {
			b.sep(sep)
		}
	}
	return b.glyphs
}

// Render draws s.
func Render(s State) Frame {
	f := Frame{Brightness: s.Brightness}
	t := s.Time
	switch s.Mode {
	case mode.EditTime:
		f.Glyphs = threeFields([3]int{t.Hour, t.Minute, t.Second}, ':', s.FieldIndex, !s.Visible)
	case mode.EditDate:
		f.Glyphs = threeFields([3]int{t.Day, t.Month, t.Year}, '-', s.FieldIndex, !s.Visible)
	case mode.EditBrightness:
		b := &builder{}
		b.twoDigits(s.Brightness, !s.Visible)
		b.blanks(Width - 2)
		f.Glyphs = b.glyphs
	default:
		f.Glyphs = threeFields([3]int{t.Hour, t.Minute, t.Second}, ':', -1, false)
	}
	return f
}

// Date draws the date overlay.
func Date(t timestamp.Timestamp, brightness int) Frame {
	return Frame{
		Brightness: brightness,
		Glyphs:     threeFields([3]int{t.Day, t.Month, t.Year}, '-', -1, false),
	}
}

// Text draws a literal message, cut or padded to the width of the display.
func Text(msg string, brightness int) Frame {
	r := []rune(msg)
	if len(r) > Width {
		r = r[:Width]
	}
	return Frame{Brightness: brightness, Text: string(r) + strings.Repeat(string(Blank), Width-len(r))}
}

// Paint sends f to d: cursor home, brightness, then the characters.
func Paint(d Display, f Frame) error {
	if err := d.Home(); err != nil {
		return fmt.Errorf("home cursor: %w", err)
	}
	if err := d.SetBrightness(f.Brightness); err != nil {
		return fmt.Errorf("set brightness: %w", err)
	}
	for i, g := range f.Glyphs {
		if err := d.WriteGlyph(g); err != nil {
			return fmt.Errorf("write glyph %d (%q): %w", i, g, err)
		}
	}
	if f.Text != "" {
		if err := d.WriteText(f.Text); err != nil {
			return fmt.Errorf("write text: %w", err)
		}
	}
	if fl, ok := d.(Flusher); ok {
		if err := fl.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
	}
	return nil
}
