// Package mode interprets button gestures as navigation and editing commands.
//
// The clock has two buttons.  Holding "mode" cycles through the screens; holding "select" moves
// between the fields of the time or date.  Clicking "mode" decrements the selected field and
// clicking "select" increments it.  On the time screen the clicks instead ask for a short
// overlay: the date, or the charge message.
package mode

import (
	"fmt"

	"github.com/jrockway/segment-clock/control/edit"
	"github.com/jrockway/segment-clock/control/timestamp"
)

// Mode is the screen currently shown.
type Mode int

const (
	ShowTime Mode = iota
	EditTime
	EditDate
	EditBrightness

	numModes = 4
)

// Next returns the mode after m, wrapping from EditBrightness to ShowTime.
func (m Mode) Next() Mode {
	return Mode((int(m) + 1) % numModes)
}

// Fields returns the editable fields of m in FieldIndex order.
func (m Mode) Fields() []edit.Field {
	switch m {
	case EditTime:
		return []edit.Field{edit.Hour, edit.Minute, edit.Second}
	case EditDate:
		return []edit.Field{edit.Day, edit.Month, edit.Year}
	case EditBrightness:
		return []edit.Field{edit.Brightness}
	default:
		return nil
	}
}

func (m Mode) String() string {
	switch m {
	case ShowTime:
		return "show_time"
	case EditTime:
		return "edit_time"
	case EditDate:
		return "edit_date"
	case EditBrightness:
		return "edit_brightness"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Event is a gesture reported by the input layer.  A single press produces a click or a hold,
// never both.
type Event int

const (
	ModeClick Event = iota
	ModeHold
	SelectClick
	SelectHold
)

func (e Event) String() string {
	switch e {
	case ModeClick:
		return "mode_click"
	case ModeHold:
		return "mode_hold"
	case SelectClick:
		return "select_click"
	case SelectHold:
		return "select_hold"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ActionKind says what the caller has to do after an event.
type ActionKind int

const (
	// Nothing beyond redrawing.
	None ActionKind = iota
	// ShowDate asks for the date overlay.
	ShowDate
	// ShowCharge asks for the charge overlay.
	ShowCharge
	// EditTimestamp asks the caller to read the clock, apply Field/Delta with Machine.Apply
	// and write the result back.
	EditTimestamp
	// Brightness has already been changed in the machine.
	SetBrightness
)

func (k ActionKind) String() string {
	switch k {
	case None:
		return "none"
	case ShowDate:
		return "show_date"
	case ShowCharge:
		return "show_charge"
	case EditTimestamp:
		return "edit_timestamp"
	case SetBrightness:
		return "set_brightness"
	default:
		return fmt.Sprintf("action(%d)", int(k))
	}
}

// Action is the result of handling one event.
type Action struct {
	Kind  ActionKind
	Field edit.Field
	Delta int
}

// fieldCount is the number of sub-fields in the time and date screens.
const fieldCount = 3

// Machine holds the mode, the selected field and the brightness.
type Machine struct {
	mode       Mode
	selected   int
	brightness int
	rules      edit.Rules
}

// New returns a machine on the time screen.  An out-of-range brightness is clamped.
func New(brightness int, rules edit.Rules) *Machine {
	if brightness < edit.MinBrightness {
		brightness = edit.MinBrightness
	}
	if brightness > edit.MaxBrightness {
		brightness = edit.MaxBrightness
	}
	return &Machine{mode: ShowTime, brightness: brightness, rules: rules}
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// FieldIndex returns the selected sub-field, 0 through 2.
func (m *Machine) FieldIndex() int { return m.selected }

// Brightness returns the display brightness, 1 through 15.
func (m *Machine) Brightness() int { return m.brightness }

// Selected returns the field that edits apply to and that blinks, if any.
func (m *Machine) Selected() (edit.Field, bool) {
	fields := m.mode.Fields()
	switch len(fields) {
	case 0:
		return 0, false
	case 1:
		return fields[0], true
	default:
		return fields[m.selected], true
	}
}

// Handle applies one event.
func (m *Machine) Handle(e Event) Action {
	switch e {
	case ModeHold:
		m.mode = m.mode.Next()
		m.selected = 0
		return Action{Kind: None}
	case SelectHold:
		if len(m.mode.Fields()) == fieldCount {
			m.selected = (m.selected + 1) % fieldCount
		}
		return Action{Kind: None}
	case ModeClick:
		return m.click(-1, ShowDate)
	case SelectClick:
		return m.click(+1, ShowCharge)
	default:
		return Action{Kind: None}
	}
}

func (m *Machine) click(delta int, overlay ActionKind) Action {
	if m.mode == ShowTime {
		return Action{Kind: overlay}
	}
	f, ok := m.Selected()
	if !ok {
		return Action{Kind: None}
	}
	if f == edit.Brightness {
		m.brightness = m.rules.Value(edit.Brightness, m.brightness, delta)
		return Action{Kind: SetBrightness, Field: f, Delta: delta}
	}
	return Action{Kind: EditTimestamp, Field: f, Delta: delta}
}

// Apply performs an EditTimestamp action on ts.  Other actions return ts unchanged.
func (m *Machine) Apply(ts timestamp.Timestamp, a Action) timestamp.Timestamp {
	if a.Kind != EditTimestamp {
		return ts
	}
	return m.rules.Timestamp(ts, a.Field, a.Delta)
}
