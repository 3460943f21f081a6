package terminal

// Pre-allocated escape sequences for session control. Render-path
// sequences live in the ansi package; these cover terminal modes.
var (
	seqClearHome = []byte("\x1b[2J\x1b[H")
	seqSGR0      = []byte("\x1b[0m")
	seqRIS       = []byte("\x1bc")

	seqCursorHide = []byte("\x1b[?25l")
	seqCursorShow = []byte("\x1b[?25h")

	// SGR mouse reporting: clicks, drags, SGR coordinate encoding.
	seqMouseOn = []byte("\x1b[?1000h\x1b[?1002h\x1b[?1006h")

	// Disable every tracking variant a terminal might have latched,
	// including ones we never enable, so a crashed predecessor cannot
	// leave reporting stuck on.
	seqMouseOff = []byte("\x1b[?1006l\x1b[?1015l\x1b[?1003l\x1b[?1002l\x1b[?1000l")
)
