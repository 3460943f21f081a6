package terminal

// Input owns a growable byte buffer fed by poll-based reads from the
// terminal and decodes it into events. Parsing is best-effort: a partial
// escape sequence triggers a short bounded re-poll before the leading ESC
// is given its literal meaning.
type Input struct {
	buf  []byte
	poll func(timeoutMs int) ([]byte, error)
}

// escRetries bounds how many short re-polls ParseKey performs to complete
// a partial escape sequence before treating ESC as the Escape key.
const (
	escRetries   = 2
	escRetryMs   = 10
	drainRetryMs = 0
)

// NewInput creates an input decoder reading from the given descriptor.
func NewInput(fd int) *Input {
	return &Input{
		buf:  make([]byte, 0, 256),
		poll: newFdPoller(fd),
	}
}

// newInputWithPoll builds an Input over an arbitrary byte source.
// Used by tests.
func newInputWithPoll(poll func(timeoutMs int) ([]byte, error)) *Input {
	return &Input{buf: make([]byte, 0, 256), poll: poll}
}

// Inject appends synthetic bytes to the buffer. The driver injects a
// single zero byte to turn a quiet tick into a Refresh event without
// busy-polling.
func (in *Input) Inject(b ...byte) {
	in.buf = append(in.buf, b...)
}

// Buffered returns the number of undecoded bytes.
func (in *Input) Buffered() int {
	return len(in.buf)
}

// fill polls for input and appends whatever arrived. A zero timeout is a
// non-blocking availability check.
func (in *Input) fill(timeoutMs int) {
	data, err := in.poll(timeoutMs)
	if err != nil || len(data) == 0 {
		return
	}
	in.buf = append(in.buf, data...)
}

// consume drops n decoded bytes from the front of the buffer.
func (in *Input) consume(n int) {
	if n >= len(in.buf) {
		in.buf = in.buf[:0]
		return
	}
	copy(in.buf, in.buf[n:])
	in.buf = in.buf[:len(in.buf)-n]
}

// ParseKey returns the next decoded event, waiting up to timeoutMs for
// bytes to arrive. Returns an Idle event when nothing came in.
func (in *Input) ParseKey(timeoutMs int) Event {
	if len(in.buf) == 0 {
		in.fill(timeoutMs)
	}
	for {
		if len(in.buf) == 0 {
			return Event{Type: EventIdle}
		}

		consumed, ev := parseOne(in.buf)
		if consumed == 0 {
			// Partial escape sequence. Re-poll briefly to complete it.
			for retry := 0; retry < escRetries; retry++ {
				in.fill(escRetryMs)
				consumed, ev = parseOne(in.buf)
				if consumed > 0 {
					break
				}
			}
			if consumed == 0 {
				// Still incomplete: a lone ESC means the Escape key;
				// anything else is consumed a byte at a time as literal.
				in.consume(1)
				return Event{Type: EventKey, Key: KeyEscape}
			}
		}

		in.consume(consumed)
		if ev.Type == EventNone {
			// Recognized but meaningless sequence; decode the next one.
			continue
		}
		return ev
	}
}

// DrainNavKeys consumes further buffered occurrences of the identical
// navigation key that was just returned and reports how many were
// dropped. Prevents input lag when the terminal driver queues key
// repeats faster than the render loop keeps up.
func (in *Input) DrainNavKeys(key string) int {
	if !IsNavKey(key) {
		return 0
	}
	in.fill(drainRetryMs)
	drained := 0
	for len(in.buf) > 0 {
		consumed, ev := parseOne(in.buf)
		if consumed == 0 || ev.Type != EventKey || ev.Key != key {
			break
		}
		in.consume(consumed)
		drained++
	}
	return drained
}

// DrainEscKeys discards queued Escape keys. Called after a modal closes
// so a buffered repeat cannot immediately trigger "go back" on the page
// underneath.
func (in *Input) DrainEscKeys() int {
	in.fill(drainRetryMs)
	drained := 0
	for len(in.buf) > 0 {
		if len(in.buf) == 1 && in.buf[0] == 0x1b {
			in.consume(1)
			drained++
			break
		}
		consumed, ev := parseOne(in.buf)
		if consumed == 0 || ev.Type != EventKey || ev.Key != KeyEscape {
			break
		}
		in.consume(consumed)
		drained++
	}
	return drained
}

// parseOne decodes the first complete event in data. Returns the bytes
// consumed and the event; consumed == 0 means the data ends inside an
// escape sequence and more bytes are needed. An EventNone result marks a
// recognized-but-ignored sequence the caller should skip past.
func parseOne(data []byte) (int, Event) {
	if len(data) == 0 {
		return 0, Event{}
	}

	b := data[0]

	// Synthetic zero byte: rate-limited periodic tick.
	if b == 0x00 {
		return 1, Event{Type: EventRefresh}
	}

	if b == 0x1b {
		return parseEscape(data)
	}

	// Control characters.
	if b < 0x20 {
		return 1, Event{Type: EventKey, Key: controlName(b)}
	}
	if b == 0x7f {
		return 1, Event{Type: EventKey, Key: KeyBackspace}
	}

	// Printable ASCII fast path.
	if b < 0x80 {
		return 1, Event{Type: EventKey, Key: string(rune(b))}
	}

	// UTF-8 multibyte, length from the leading byte, clamped to what is
	// available at the end of the buffer.
	seqLen := utf8SeqLen(b)
	if seqLen == 0 {
		return 1, Event{Type: EventNone}
	}
	if seqLen > len(data) {
		seqLen = len(data)
	}
	return seqLen, Event{Type: EventKey, Key: string(data[:seqLen])}
}

// controlName maps bytes 1-31 to key names: Tab, Enter, Escape, and
// Ctrl+letter for the rest of the C0 range.
func controlName(b byte) string {
	switch b {
	case 0x09:
		return KeyTab
	case 0x0a, 0x0d:
		return KeyEnter
	case 0x1b:
		return KeyEscape
	}
	if b >= 0x01 && b <= 0x1a {
		return "Ctrl+" + string(rune('A'+b-1))
	}
	return string(rune(b))
}

// parseEscape decodes sequences introduced by ESC. Returns 0 while the
// sequence may still be completed by more input.
func parseEscape(data []byte) (int, Event) {
	if len(data) < 2 {
		return 0, Event{}
	}

	switch data[1] {
	case '[':
		return parseCSI(data)
	case 'O':
		if len(data) < 3 {
			return 0, Event{}
		}
		if key := arrowName(data[2]); key != "" {
			return 3, Event{Type: EventKey, Key: key}
		}
		return 3, Event{Type: EventNone}
	}

	// ESC followed by an unrelated byte: a standalone Escape press, the
	// next byte stays buffered.
	return 1, Event{Type: EventKey, Key: KeyEscape}
}

// parseCSI decodes ESC [ sequences: arrows, Delete, and SGR mouse.
func parseCSI(data []byte) (int, Event) {
	if len(data) < 3 {
		return 0, Event{}
	}

	if data[2] == '<' {
		return parseSGRMouse(data)
	}

	if key := arrowName(data[2]); key != "" {
		return 3, Event{Type: EventKey, Key: key}
	}

	// Scan to the terminator byte.
	end := 2
	maxScan := len(data)
	if maxScan > 18 {
		maxScan = 18
	}
	for end < maxScan {
		b := data[end]
		if b >= 0x40 && b <= 0x7e {
			end++
			seq := string(data[2:end])
			if seq == "3~" {
				return end, Event{Type: EventKey, Key: KeyDelete}
			}
			return end, Event{Type: EventNone}
		}
		if b < 0x20 {
			// Broken sequence; give up on it.
			return end, Event{Type: EventNone}
		}
		end++
	}
	if end >= 18 {
		// Unterminated oversized sequence, treated as garbage.
		return end, Event{Type: EventNone}
	}
	return 0, Event{}
}

func arrowName(b byte) string {
	switch b {
	case 'A':
		return KeyUp
	case 'B':
		return KeyDown
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	}
	return ""
}

// parseSGRMouse decodes ESC [ < btn ; col ; row M/m reports. Coordinates
// arrive 1-indexed and are converted to grid positions.
func parseSGRMouse(data []byte) (int, Event) {
	end := 3
	for end < len(data) && end < 32 {
		if data[end] == 'M' || data[end] == 'm' {
			break
		}
		end++
	}
	if end >= len(data) || end >= 32 {
		if end >= 32 {
			return end, Event{Type: EventNone}
		}
		return 0, Event{}
	}

	btn, col, row, ok := parseSGRParams(data[3:end])
	if !ok {
		return end + 1, Event{Type: EventNone}
	}

	ev := Event{Row: row - 1, Col: col - 1}

	isMotion := btn&32 != 0
	isScroll := btn&64 != 0
	switch {
	case isScroll:
		if btn&0x03 == 0 {
			ev.Button = MouseWheelUp
		} else {
			ev.Button = MouseWheelDown
		}
		ev.Type = EventMousePress
	default:
		switch btn & 0x03 {
		case 0:
			ev.Button = MouseLeft
		case 1:
			ev.Button = MouseMiddle
		case 2:
			ev.Button = MouseRight
		case 3:
			ev.Button = MouseNone
		}
		switch {
		case data[end] == 'm':
			ev.Type = EventMouseRelease
		case isMotion:
			ev.Type = EventMouseDrag
		default:
			ev.Type = EventMousePress
		}
	}

	return end + 1, ev
}

// parseSGRParams extracts btn, col, row from the "btn;col;row" payload.
func parseSGRParams(data []byte) (btn, col, row int, ok bool) {
	field := 0
	val := 0
	for _, b := range data {
		switch {
		case b == ';':
			switch field {
			case 0:
				btn = val
			case 1:
				col = val
			default:
				return 0, 0, 0, false
			}
			field++
			val = 0
		case b >= '0' && b <= '9':
			val = val*10 + int(b-'0')
			if val > 9999 {
				return 0, 0, 0, false
			}
		default:
			return 0, 0, 0, false
		}
	}
	if field != 2 {
		return 0, 0, 0, false
	}
	row = val
	return btn, col, row, true
}

// utf8SeqLen returns the UTF-8 sequence length implied by a leading byte,
// or 0 for an invalid start byte.
func utf8SeqLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b&0xe0 == 0xc0:
		return 2
	case b&0xf0 == 0xe0:
		return 3
	case b&0xf8 == 0xf0:
		return 4
	}
	return 0
}
