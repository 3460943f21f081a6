// Package driver runs the per-tick main loop: it sizes the viewport,
// asks the page for its view, composites modal overlays, parses the
// composed ANSI text into the back buffer, and dispatches decoded input
// to whichever collaborator owns focus. Page, modal, and navigation
// semantics live entirely outside this package; the driver only renders
// returned strings and forwards events.
package driver

import (
	"github.com/trilitech/miaou-matrix/terminal"
)

// Page supplies the screen content and consumes input the driver routes
// to it. The driver never interprets page semantics.
type Page interface {
	// View renders the page into an ANSI string for the given area.
	View(rows, cols int) string

	// HandleKey processes an input event. The return reports whether
	// the event was consumed or should bubble.
	HandleKey(ev terminal.Event) bool

	// Refresh is the periodic hook advanced on quiet ticks.
	Refresh()
}

// ModalStack supplies overlay rendering and input capture for whatever
// modal bookkeeping the application maintains.
type ModalStack interface {
	// HasActive reports whether any modal currently owns input.
	HasActive() bool

	// RenderOverlay composites the stack over base, returning the
	// combined view and true, or false when nothing is active.
	RenderOverlay(base string, rows, cols int) (string, bool)

	// HandleKey routes an event to the topmost modal. A false return
	// bubbles the event to the page beneath.
	HandleKey(ev terminal.Event) bool
}

// NavKind classifies a pending navigation outcome.
type NavKind uint8

const (
	NavNone NavKind = iota
	NavGoto
	NavBack
	NavQuit
)

// Nav is the outcome the main loop terminates with.
type Nav struct {
	Kind   NavKind
	Target string // page name for NavGoto
}

// Navigator exposes the externally owned navigation state machine. The
// driver polls it after each dispatched event.
type Navigator interface {
	Pending() Nav
}
