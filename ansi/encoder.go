package ansi

import (
	"bytes"

	"github.com/trilitech/miaou-matrix/core"
)

// Encoder turns a diff change list into terminal bytes. It holds the
// style last emitted so redundant SGR sequences are skipped across calls.
type Encoder struct {
	style core.Style
	buf   bytes.Buffer
}

// NewEncoder returns an encoder holding the default style.
func NewEncoder() *Encoder {
	return &Encoder{style: core.DefaultStyle}
}

// Reset clears the held style to default. Called at the start of every
// render tick so encoder state never desyncs from a freshly-reset
// terminal.
func (e *Encoder) Reset() {
	e.style = core.DefaultStyle
}

// Style returns the currently held style.
func (e *Encoder) Style() core.Style {
	return e.style
}

// Render encodes changes in order and returns the byte stream. The
// returned slice is reused by the next Render call.
func (e *Encoder) Render(changes []core.Change) []byte {
	e.buf.Reset()
	for _, ch := range changes {
		switch ch.Kind {
		case core.ChangeMoveTo:
			e.buf.WriteString(CSI)
			writeInt(&e.buf, ch.Row+1)
			e.buf.WriteByte(';')
			writeInt(&e.buf, ch.Col+1)
			e.buf.WriteByte('H')
		case core.ChangeSetStyle:
			e.writeStyle(ch.Style)
		case core.ChangeWriteChar:
			e.buf.WriteString(ch.Ch)
		case core.ChangeWriteRun:
			for i := 0; i < ch.Count; i++ {
				e.buf.WriteString(ch.Ch)
			}
		}
	}
	return e.buf.Bytes()
}

// writeStyle emits the transition from the held style to s: at most one
// SGR sequence, plus OSC 8 open/close when the hyperlink target changes.
func (e *Encoder) writeStyle(s core.Style) {
	if s == e.style {
		return
	}

	if s.URL != e.style.URL {
		if e.style.URL != "" {
			e.buf.WriteString(OSC + "8;;" + ST)
		}
		if s.URL != "" {
			e.buf.WriteString(OSC + "8;;")
			e.buf.WriteString(s.URL)
			e.buf.WriteString(ST)
		}
	}

	if sgrEqual(s, e.style) {
		e.style = s
		return
	}

	if s.IsDefault() || sgrDefault(s) {
		e.buf.WriteString(ResetAttrs)
		e.style = s
		return
	}

	// Single combined sequence, leading 0 clears previous attributes.
	e.buf.WriteString(CSI)
	e.buf.WriteByte('0')
	if s.Bold {
		e.buf.WriteString(";1")
	}
	if s.Dim {
		e.buf.WriteString(";2")
	}
	if s.Underline {
		e.buf.WriteString(";4")
	}
	if s.Reverse {
		e.buf.WriteString(";7")
	}
	if s.Fg >= 0 {
		e.buf.WriteString(";38;5;")
		writeInt(&e.buf, s.Fg)
	}
	if s.Bg >= 0 {
		e.buf.WriteString(";48;5;")
		writeInt(&e.buf, s.Bg)
	}
	e.buf.WriteByte('m')
	e.style = s
}

// sgrEqual reports whether two styles agree on everything SGR controls
// (the hyperlink is carried by OSC 8, not SGR).
func sgrEqual(a, b core.Style) bool {
	a.URL = ""
	b.URL = ""
	return a == b
}

// sgrDefault reports whether the SGR-visible part of s is all-default.
func sgrDefault(s core.Style) bool {
	s.URL = ""
	return s == core.DefaultStyle
}

// writeInt writes a non-negative integer without allocation.
// Terminal values are small: 0-255 common, four digits rare.
func writeInt(buf *bytes.Buffer, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		buf.WriteByte(byte(n) + '0')
		return
	}
	if n < 100 {
		buf.WriteByte(byte(n/10) + '0')
		buf.WriteByte(byte(n%10) + '0')
		return
	}
	if n < 1000 {
		buf.WriteByte(byte(n/100) + '0')
		buf.WriteByte(byte(n/10%10) + '0')
		buf.WriteByte(byte(n%10) + '0')
		return
	}
	var tmp [8]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = byte(n%10) + '0'
		n /= 10
	}
	buf.Write(tmp[i:])
}
