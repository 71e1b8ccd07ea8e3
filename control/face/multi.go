package face

// Multi sends everything to each of its displays, in order.  Every display sees every call even
// if an earlier one fails; the first error is returned.
type Multi []Display

func (m Multi) each(f func(Display) error) error {
	var first error
	for _, d := range m {
		if err := f(d); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Home() error { return m.each(func(d Display) error { return d.Home() }) }

func (m Multi) SetBrightness(level int) error {
	return m.each(func(d Display) error { return d.SetBrightness(level) })
}

func (m Multi) WriteGlyph(g rune) error {
	return m.each(func(d Display) error { return d.WriteGlyph(g) })
}

func (m Multi) WriteText(s string) error {
	return m.each(func(d Display) error { return d.WriteText(s) })
}

// Flush flushes the displays that buffer.
func (m Multi) Flush() error {
	return m.each(func(d Display) error {
		if f, ok := d.(Flusher); ok {
			return f.Flush()
		}
		return nil
	})
}
