//go:build unix

package terminal

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// Fallback dimensions when every detection path fails.
const (
	fallbackRows = 24
	fallbackCols = 80
)

// sizeDetector caches the detected terminal size until invalidated by a
// resize signal. Detection order: environment override, TIOCGWINSZ
// ioctl, stty subprocess, hardcoded 24x80.
type sizeDetector struct {
	mu     sync.Mutex
	fd     int
	rows   int
	cols   int
	valid  bool
	envVar struct{ rows, cols string }
}

func newSizeDetector(fd int) *sizeDetector {
	d := &sizeDetector{fd: fd}
	d.envVar.rows = "MATRIX_ROWS"
	d.envVar.cols = "MATRIX_COLS"
	return d
}

// size returns the cached dimensions, detecting them if needed.
func (d *sizeDetector) size() (rows, cols int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.valid {
		return d.rows, d.cols
	}
	d.rows, d.cols = d.detect()
	d.valid = true
	return d.rows, d.cols
}

// invalidate clears the cache so the next query re-detects.
func (d *sizeDetector) invalidate() {
	d.mu.Lock()
	d.valid = false
	d.mu.Unlock()
}

func (d *sizeDetector) detect() (rows, cols int) {
	if r, c, ok := envSize(d.envVar.rows, d.envVar.cols); ok {
		return r, c
	}
	if ws, err := unix.IoctlGetWinsize(d.fd, unix.TIOCGWINSZ); err == nil &&
		ws.Row > 0 && ws.Col > 0 {
		return int(ws.Row), int(ws.Col)
	}
	if r, c, ok := sttySize(); ok {
		return r, c
	}
	return fallbackRows, fallbackCols
}

// envSize reads a forced size override, for headless and test runs.
func envSize(rowsVar, colsVar string) (rows, cols int, ok bool) {
	r, errR := strconv.Atoi(os.Getenv(rowsVar))
	c, errC := strconv.Atoi(os.Getenv(colsVar))
	if errR != nil || errC != nil || r < 1 || c < 1 {
		return 0, 0, false
	}
	return r, c, true
}

// sttySize queries "stty size" against the controlling terminal. Covers
// ptys where the ioctl misbehaves.
func sttySize() (rows, cols int, ok bool) {
	tty, err := os.Open("/dev/tty")
	if err != nil {
		return 0, 0, false
	}
	defer tty.Close()

	cmd := exec.Command("stty", "size")
	cmd.Stdin = tty
	out, err := cmd.Output()
	if err != nil {
		return 0, 0, false
	}
	fields := strings.Fields(string(out))
	if len(fields) != 2 {
		return 0, 0, false
	}
	r, errR := strconv.Atoi(fields[0])
	c, errC := strconv.Atoi(fields[1])
	if errR != nil || errC != nil || r < 1 || c < 1 {
		return 0, 0, false
	}
	return r, c, true
}
