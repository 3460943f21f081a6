// Package terminal provides direct ANSI terminal access: raw mode and
// session lifecycle, size detection, signal handling, and a raw-byte
// input decoder producing structured key and mouse events.
//
// This package bypasses terminfo/termcap entirely, emitting and parsing
// direct ANSI sequences. Target environments: Linux, macOS, BSDs with
// xterm-compatible terminals and SGR mouse reporting.
package terminal

// EventType distinguishes input event categories.
type EventType uint8

const (
	EventNone EventType = iota
	EventKey
	EventMousePress
	EventMouseRelease
	EventMouseDrag
	EventResize
	EventRefresh // synthetic periodic tick, no user input
	EventIdle    // poll timed out with nothing buffered
	EventQuit
)

// MouseButton identifies which button an SGR mouse report names.
type MouseButton uint8

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// Event is one decoded input event. Key holds a name for special keys
// ("Up", "Escape", "Ctrl+C", ...) or the literal character for printable
// input. Mouse coordinates are 0-indexed grid positions; the SGR wire
// format is 1-indexed and the decoder converts.
type Event struct {
	Type   EventType
	Key    string
	Row    int
	Col    int
	Button MouseButton
}

// Key names for special keys.
const (
	KeyEscape    = "Escape"
	KeyEnter     = "Enter"
	KeyTab       = "Tab"
	KeyBackspace = "Backspace"
	KeyDelete    = "Delete"
	KeyUp        = "Up"
	KeyDown      = "Down"
	KeyLeft      = "Left"
	KeyRight     = "Right"
)

// IsNavKey reports whether name is a navigation key eligible for repeat
// draining when held down.
func IsNavKey(name string) bool {
	switch name {
	case KeyUp, KeyDown, KeyLeft, KeyRight, KeyTab, KeyDelete:
		return true
	}
	return false
}

// String returns a human-readable button name.
func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "Left"
	case MouseMiddle:
		return "Middle"
	case MouseRight:
		return "Right"
	case MouseWheelUp:
		return "WheelUp"
	case MouseWheelDown:
		return "WheelDown"
	default:
		return "None"
	}
}
