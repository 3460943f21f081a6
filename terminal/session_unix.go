//go:build unix

package terminal

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Session owns the terminal for the lifetime of the engine: raw mode,
// mouse tracking, size detection, resize and termination signals, and a
// best-effort write path.
type Session struct {
	tty      *os.File // direct terminal descriptor, nil if /dev/tty failed
	inFd     int
	oldState *term.State
	size     *sizeDetector

	resizePending atomic.Bool
	mouseEnabled  bool

	sigCh      chan os.Signal
	sigDone    chan struct{}
	sigStopped bool

	// fatalExit is set by the signal goroutine before it runs fatal
	// cleanup; Close must not join the goroutine it is running on.
	fatalExit atomic.Bool

	// exit defaults to os.Exit; tests substitute it.
	exit func(code int)
}

// SessionOptions tunes signal behavior.
type SessionOptions struct {
	// SigintPassthrough leaves SIGINT untrapped so the hosting process
	// receives it normally.
	SigintPassthrough bool
}

// NewSession prepares a session over stdin/stdout. Fails when stdin is
// not an interactive terminal; the engine cannot operate without one.
func NewSession() (*Session, error) {
	inFd := int(os.Stdin.Fd())
	if !term.IsTerminal(inFd) {
		return nil, fmt.Errorf("session: stdin is not a terminal")
	}

	s := &Session{inFd: inFd}

	// Writes prefer the controlling terminal so rendering still works if
	// stdout is redirected; Write falls back to stdout on failure.
	if tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0); err == nil {
		s.tty = tty
	}

	s.size = newSizeDetector(s.writeFd())
	return s, nil
}

func (s *Session) writeFd() int {
	if s.tty != nil {
		return int(s.tty.Fd())
	}
	return int(os.Stdout.Fd())
}

// InputFd returns the descriptor the input decoder should poll.
func (s *Session) InputFd() int {
	return s.inFd
}

// EnterRaw disables canonical mode and echo; reads return after one byte
// with no timeout.
func (s *Session) EnterRaw() error {
	old, err := term.MakeRaw(s.inFd)
	if err != nil {
		return fmt.Errorf("session: raw mode: %w", err)
	}
	s.oldState = old
	return nil
}

// LeaveRaw restores the pre-raw terminal state. Safe to call twice.
func (s *Session) LeaveRaw() {
	if s.oldState != nil {
		term.Restore(s.inFd, s.oldState)
		s.oldState = nil
	}
}

// Write sends bytes to the terminal, falling back to stdout when the
// direct descriptor fails. Ultimate failure is swallowed: a rendering
// engine must never crash the host over a cosmetic write.
func (s *Session) Write(p []byte) {
	if s.tty != nil {
		if _, err := s.tty.Write(p); err == nil {
			return
		}
	}
	os.Stdout.Write(p)
}

// WriteString is Write for string payloads.
func (s *Session) WriteString(p string) {
	s.Write([]byte(p))
}

// EnableMouse turns on SGR click and drag reporting.
func (s *Session) EnableMouse() {
	s.Write(seqMouseOn)
	s.mouseEnabled = true
}

// DisableMouse turns off every mouse tracking variant. Written a second
// time after a short settle delay; some terminals drop the first write
// during teardown.
func (s *Session) DisableMouse() {
	if !s.mouseEnabled {
		return
	}
	for i := 0; i < 2; i++ {
		s.Write(seqMouseOff)
		time.Sleep(10 * time.Millisecond)
	}
	s.mouseEnabled = false
}

// HideCursor makes the hardware cursor invisible.
func (s *Session) HideCursor() {
	s.Write(seqCursorHide)
}

// ShowCursor restores the hardware cursor.
func (s *Session) ShowCursor() {
	s.Write(seqCursorShow)
}

// Clear wipes the screen and homes the cursor.
func (s *Session) Clear() {
	s.Write(seqClearHome)
}

// Size returns the terminal dimensions, cached until InvalidateSize.
func (s *Session) Size() (rows, cols int) {
	return s.size.size()
}

// InvalidateSize drops the cached size so the next query re-detects.
func (s *Session) InvalidateSize() {
	s.size.invalidate()
}

// ResizePending reports and clears the resize flag set by SIGWINCH.
func (s *Session) ResizePending() bool {
	return s.resizePending.Swap(false)
}

// InstallSignalHandlers wires SIGWINCH to the resize flag and the
// termination signals to cleanup-then-exit. Handler work is minimal —
// set a flag, invalidate a cache — with everything else done from the
// normal control flow that polls the flag.
func (s *Session) InstallSignalHandlers(cleanup func(), opts SessionOptions) {
	s.sigCh = make(chan os.Signal, 4)
	s.sigDone = make(chan struct{})

	sigs := []os.Signal{syscall.SIGWINCH, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT}
	if !opts.SigintPassthrough {
		sigs = append(sigs, syscall.SIGINT)
	}
	signal.Notify(s.sigCh, sigs...)

	exit := s.exit
	if exit == nil {
		exit = os.Exit
	}

	go func() {
		defer close(s.sigDone)
		for sig := range s.sigCh {
			switch sig {
			case syscall.SIGWINCH:
				s.size.invalidate()
				s.resizePending.Store(true)
			default:
				// Cleanup typically calls Close, which runs on this
				// goroutine here and must not join it.
				s.fatalExit.Store(true)
				if cleanup != nil {
					cleanup()
				}
				code := 128
				if num, ok := sig.(syscall.Signal); ok {
					code += int(num)
				}
				exit(code)
			}
		}
	}()
}

// Close tears the session down: mouse off, cursor shown, raw mode left,
// signal goroutine stopped. Safe to call multiple times.
func (s *Session) Close() {
	if s.sigCh != nil && !s.sigStopped {
		signal.Stop(s.sigCh)
		s.sigStopped = true
		// During fatal-signal cleanup Close runs on the signal
		// goroutine itself; joining it would deadlock, and the process
		// is exiting anyway.
		if !s.fatalExit.Load() {
			close(s.sigCh)
			<-s.sigDone
		}
	}
	s.DisableMouse()
	s.Write(seqSGR0)
	s.ShowCursor()
	s.LeaveRaw()
	if s.tty != nil {
		s.tty.Close()
		s.tty = nil
	}
}

// EmergencyReset writes every restorative sequence to w and attempts a
// cooked-mode termios restore. Call from panic recovery when Close
// cannot run normally; errors are ignored in a crash context.
func EmergencyReset(w io.Writer) {
	w.Write(seqMouseOff)
	w.Write(seqCursorShow)
	w.Write(seqSGR0)
	w.Write(seqRIS)
	if f, ok := w.(*os.File); ok {
		f.Sync()
	}
	restoreCookedMode()
}

// restoreCookedMode re-enables echo and canonical mode via /dev/tty.
// Escape sequences alone cannot restore termios state.
func restoreCookedMode() {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return
	}
	defer tty.Close()
	fd := int(tty.Fd())
	termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return
	}
	termios.Lflag |= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Iflag |= unix.ICRNL
	unix.IoctlSetTermios(fd, ioctlWriteTermios, termios)
}
