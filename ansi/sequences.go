// Package ansi encodes cell changes into terminal escape sequences and
// parses application-rendered ANSI text back into cells. It targets
// VT100/xterm-compatible terminals directly, with no terminfo layer.
package ansi

import "strconv"

// Escape sequence fragments and whole sequences used by the engine.
// Kept as constants so render paths concatenate rather than format.
const (
	ESC = "\x1b"
	CSI = "\x1b["
	OSC = "\x1b]"
	ST  = "\x1b\\" // string terminator
	BEL = "\x07"

	CursorHide = "\x1b[?25l"
	CursorShow = "\x1b[?25h"
	CursorHome = "\x1b[H"

	ResetAttrs = "\x1b[0m"
	ClearHome  = "\x1b[2J\x1b[H"
	FullReset  = "\x1b[0m\x1b[2J\x1b[H"
)

// CursorTo returns the cursor-position sequence for 0-indexed grid
// coordinates. The wire format is 1-indexed.
func CursorTo(row, col int) string {
	return CSI + strconv.Itoa(row+1) + ";" + strconv.Itoa(col+1) + "H"
}
