package driver

import (
	"time"

	"github.com/trilitech/miaou-matrix/clipboard"
	"github.com/trilitech/miaou-matrix/config"
	"github.com/trilitech/miaou-matrix/core"
	"github.com/trilitech/miaou-matrix/logger"
	"github.com/trilitech/miaou-matrix/render"
	"github.com/trilitech/miaou-matrix/selection"
	"github.com/trilitech/miaou-matrix/terminal"
)

const (
	// escCooldown swallows Escape keys briefly after a modal closes so a
	// buffered repeat cannot also dismiss the page underneath.
	escCooldown = 300 * time.Millisecond

	// refreshInterval paces synthetic Refresh events on quiet ticks.
	refreshInterval = time.Second

	// fullRedrawTicks forces a periodic full repaint as self-healing
	// against any missed-diff artifact.
	fullRedrawTicks = 120

	// defaultNarrowWidth triggers the one-time narrow-terminal warning.
	defaultNarrowWidth = 60

	// narrowWarnDuration is how long the warning modal shows itself.
	narrowWarnDuration = 4 * time.Second
)

// Options configures a Driver.
type Options struct {
	Page   Page
	Modals ModalStack
	Nav    Navigator

	// Footer is the key-hints line shown at the bottom, "" for none.
	Footer string

	// NarrowWidth overrides the narrow-terminal warning threshold.
	NarrowWidth int
}

// Driver ties the engine together for one page's lifetime: terminal
// session, double buffer, render goroutine, input decoder, selection.
type Driver struct {
	cfg     config.Config
	session *terminal.Session
	buf     *core.Buffer
	loop    *render.Loop
	input   *terminal.Input
	sel     *selection.Selection
	frame   *framer

	page   Page
	modals ModalStack
	nav    Navigator

	rows, cols int
	ticks      int

	modalWasActive bool
	escQuietUntil  time.Time
	lastRefresh    time.Time

	narrowWarned   bool
	narrowWarnOpen bool
	narrowUntil    time.Time
}

// New prepares a driver. Fails only when no interactive terminal is
// available.
func New(cfg config.Config, opts Options) (*Driver, error) {
	if cfg.Debug {
		if err := logger.Init(cfg.DebugLogPath); err == nil {
			logger.Log("driver: debug logging enabled")
		}
	}

	session, err := terminal.NewSession()
	if err != nil {
		return nil, err
	}

	rows, cols := session.Size()
	if cfg.Rows > 0 && cfg.Cols > 0 {
		rows, cols = cfg.Rows, cfg.Cols
	}

	buf := core.NewBuffer(rows, cols)
	d := &Driver{
		cfg:     cfg,
		session: session,
		buf:     buf,
		loop:    render.NewLoop(buf, session.Write, cfg.FPS),
		input:   terminal.NewInput(session.InputFd()),
		sel:     selection.New(),
		page:    opts.Page,
		modals:  opts.Modals,
		nav:     opts.Nav,
		rows:    rows,
		cols:    cols,
	}
	d.frame = newFramer(d, opts.Footer, opts.NarrowWidth)

	if clipboard.Init() == nil {
		d.sel.SetSink(clipboard.WriteText)
	}
	return d, nil
}

// Buffer exposes the shared double buffer, mainly for tests and tooling.
func (d *Driver) Buffer() *core.Buffer {
	return d.buf
}

// Run enters the main loop and blocks until navigation requests an exit.
// The returned Nav is NavQuit, NavBack, or NavGoto.
func (d *Driver) Run() Nav {
	if err := d.session.EnterRaw(); err != nil {
		logger.Log("driver: raw mode failed: %v", err)
		return Nav{Kind: NavQuit}
	}
	d.session.InstallSignalHandlers(d.teardown, terminal.SessionOptions{
		SigintPassthrough: d.cfg.SigintPassthrough,
	})
	d.session.HideCursor()
	d.session.Clear()
	if d.cfg.Mouse {
		d.session.EnableMouse()
	}
	d.loop.Start()

	defer d.teardown()

	tick := tickInterval(d.cfg.TPS)
	d.lastRefresh = time.Now()

	for {
		tickStart := time.Now()

		d.handleResize()
		d.frame.compose(d.rows, d.cols)
		d.handleModalTransition()

		d.ticks++
		if d.ticks%fullRedrawTicks == 0 {
			d.buf.MarkAllDirty()
		}

		if nav, done := d.pumpEvents(tick); done {
			return nav
		}

		if remaining := tick - time.Since(tickStart); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// tickInterval converts ticks-per-second to a tick duration. Zero or
// negative values clamp to one tick per second, matching how the render
// loop clamps its FPS cap.
func tickInterval(tps int) time.Duration {
	if tps < 1 {
		tps = 1
	}
	return time.Second / time.Duration(tps)
}

// handleResize picks up SIGWINCH and viewport changes, resizing the
// buffer and forcing a full repaint.
func (d *Driver) handleResize() {
	resized := d.session.ResizePending()
	rows, cols := d.session.Size()
	if d.cfg.Rows > 0 && d.cfg.Cols > 0 {
		rows, cols = d.cfg.Rows, d.cfg.Cols
	}
	if !resized && rows == d.rows && cols == d.cols {
		return
	}
	d.rows, d.cols = rows, cols
	d.buf.Resize(rows, cols)
	d.session.Clear()
	d.buf.MarkAllDirty()
	d.loop.ForceRender()
	logger.Log("driver: resized to %dx%d", rows, cols)
}

// handleModalTransition forces an immediate synchronous full redraw on
// any modal activation change, preventing stale-overlay artifacts from a
// lagging diff.
func (d *Driver) handleModalTransition() {
	active := d.narrowWarnOpen
	if d.modals != nil && d.modals.HasActive() {
		active = true
	}
	if active == d.modalWasActive {
		return
	}
	d.modalWasActive = active

	d.session.Clear()
	d.buf.MarkAllDirty()
	d.loop.ForceRender()

	if !active {
		d.escQuietUntil = time.Now().Add(escCooldown)
		d.input.DrainEscKeys()
	}
}

// pumpEvents drains and dispatches queued input. Returns the navigation
// outcome and true when the loop should stop.
func (d *Driver) pumpEvents(tick time.Duration) (Nav, bool) {
	// Rate-limited synthetic tick so pages get periodic refreshes even
	// with no user input.
	if time.Since(d.lastRefresh) >= refreshInterval {
		d.input.Inject(0)
		d.lastRefresh = time.Now()
	}

	pollMs := int(tick.Milliseconds()) / 2
	if pollMs < 1 {
		pollMs = 1
	}

	first := true
	for {
		timeout := 0
		if first {
			timeout = pollMs
			first = false
		}
		ev := d.input.ParseKey(timeout)
		if ev.Type == terminal.EventIdle {
			return Nav{}, false
		}

		if nav, done := d.dispatch(ev); done {
			return nav, done
		}
	}
}

// dispatch routes one event. Key events go to whichever of the transient
// warning modal, the application modal stack, or the page owns focus.
func (d *Driver) dispatch(ev terminal.Event) (Nav, bool) {
	switch ev.Type {
	case terminal.EventQuit:
		return Nav{Kind: NavQuit}, true

	case terminal.EventResize:
		d.session.Clear()
		d.buf.MarkAllDirty()
		return Nav{}, false

	case terminal.EventRefresh:
		d.page.Refresh()
		return Nav{}, false

	case terminal.EventMousePress, terminal.EventMouseDrag, terminal.EventMouseRelease:
		d.handleMouse(ev)
		return d.checkNav()

	case terminal.EventKey:
		return d.handleKey(ev)
	}
	return Nav{}, false
}

func (d *Driver) handleKey(ev terminal.Event) (Nav, bool) {
	if ev.Key == "Ctrl+C" {
		return Nav{Kind: NavQuit}, true
	}

	if ev.Key == terminal.KeyEscape && time.Now().Before(d.escQuietUntil) {
		return Nav{}, false
	}

	// Keyboard input drops any lingering mouse selection.
	d.sel.Clear()

	switch {
	case d.narrowWarnOpen:
		// Any key dismisses the transient warning.
		d.narrowWarnOpen = false
	case d.modals != nil && d.modals.HasActive():
		// Unconsumed keys bubble past the modal to the page beneath.
		if !d.modals.HandleKey(ev) {
			d.page.HandleKey(ev)
		}
	default:
		d.page.HandleKey(ev)
	}

	if terminal.IsNavKey(ev.Key) {
		d.input.DrainNavKeys(ev.Key)
	}
	return d.checkNav()
}

// handleMouse drives the selection engine and forwards the event to the
// focus owner.
func (d *Driver) handleMouse(ev terminal.Event) {
	grid := backGrid{b: d.buf}
	switch ev.Type {
	case terminal.EventMousePress:
		if ev.Button == terminal.MouseLeft {
			d.sel.Start(grid, ev.Row, ev.Col, time.Now())
		}
	case terminal.EventMouseDrag:
		d.sel.Update(ev.Row, ev.Col)
	case terminal.EventMouseRelease:
		text := d.sel.Finish(grid)
		d.sel.CopyToClipboard(text)
	}

	if d.modals != nil && d.modals.HasActive() {
		if d.modals.HandleKey(ev) {
			return
		}
	}
	d.page.HandleKey(ev)
}

// checkNav polls pending navigation; a result stops event processing for
// this tick and propagates out of Run.
func (d *Driver) checkNav() (Nav, bool) {
	if d.nav == nil {
		return Nav{}, false
	}
	if nav := d.nav.Pending(); nav.Kind != NavNone {
		return nav, true
	}
	return Nav{}, false
}

// teardown restores the terminal. Safe to call more than once.
func (d *Driver) teardown() {
	d.loop.Shutdown()
	d.session.Clear()
	d.session.Close()
	logger.Close()
}

// backGrid adapts the double buffer's back grid for the selection engine.
type backGrid struct {
	b *core.Buffer
}

func (g backGrid) Rows() int { return g.b.Rows() }
func (g backGrid) Cols() int { return g.b.Cols() }
func (g backGrid) Cell(row, col int) core.Cell {
	return g.b.GetBack(row, col)
}
