// Package render runs the dedicated render goroutine: an FPS-capped
// diff → encode → write → swap cycle over the shared double buffer.
package render

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/trilitech/miaou-matrix/ansi"
	"github.com/trilitech/miaou-matrix/core"
)

// WriteFunc delivers encoded bytes to the terminal.
type WriteFunc func([]byte)

// Loop owns the render goroutine. The main goroutine composes frames
// into the buffer's back grid; the loop diffs, encodes, writes, and
// swaps, all under the buffer lock so no torn frame is ever observed.
type Loop struct {
	buf   *core.Buffer
	enc   *ansi.Encoder
	write WriteFunc

	minFrame time.Duration
	stop     atomic.Bool
	done     chan struct{}
	started  bool

	frameMu   sync.Mutex // serializes frames between goroutine and ForceRender
	lastFrame time.Time

	frames      atomic.Int64
	achievedFPS atomic.Int64
}

// NewLoop creates a render loop over buf writing through write, capped at
// fpsCap frames per second.
func NewLoop(buf *core.Buffer, write WriteFunc, fpsCap int) *Loop {
	if fpsCap < 1 {
		fpsCap = 1
	}
	return &Loop{
		buf:      buf,
		enc:      ansi.NewEncoder(),
		write:    write,
		minFrame: time.Second / time.Duration(fpsCap),
		done:     make(chan struct{}),
	}
}

// Start launches the render goroutine. Calling Start twice is a no-op.
func (l *Loop) Start() {
	if l.started {
		return
	}
	l.started = true
	go l.run()
}

// Shutdown stops the loop and blocks until the goroutine has observably
// terminated, so callers can tear down resources it writes to.
func (l *Loop) Shutdown() {
	if l.stop.Swap(true) {
		return
	}
	if l.started {
		<-l.done
	} else {
		close(l.done)
	}
}

// ForceRender renders a frame immediately, bypassing the FPS gate. Used
// on modal transitions and resize to guarantee a tear-free redraw.
func (l *Loop) ForceRender() {
	if l.stop.Load() {
		return
	}
	l.renderFrame()
}

// FPS returns the achieved frame rate, recomputed once per second.
func (l *Loop) FPS() int {
	return int(l.achievedFPS.Load())
}

func (l *Loop) run() {
	defer close(l.done)

	secStart := time.Now()
	for {
		if l.stop.Load() {
			return
		}

		l.frameMu.Lock()
		due := time.Since(l.lastFrame) >= l.minFrame
		l.frameMu.Unlock()

		if due && l.buf.NeedsRender() {
			l.renderFrame()
		}

		if time.Since(secStart) >= time.Second {
			l.achievedFPS.Store(l.frames.Swap(0))
			secStart = time.Now()
		}

		time.Sleep(time.Millisecond)
	}
}

// renderFrame performs one diff/encode/write/swap cycle. Diff and swap
// run under the buffer lock as one atomic step.
func (l *Loop) renderFrame() {
	l.frameMu.Lock()
	defer l.frameMu.Unlock()

	l.buf.ClearNeedsRender()

	// The terminal attribute state gets a hard reset each frame so the
	// encoder can start from a known style.
	l.enc.Reset()

	var out []byte
	l.buf.WithLock(func() {
		changes := l.buf.DiffUnlocked()
		if len(changes) > 0 {
			out = l.enc.Render(changes)
		}
		l.buf.SwapUnlocked()
	})

	if len(out) > 0 {
		frame := make([]byte, 0, len(out)+len(ansi.ResetAttrs))
		frame = append(frame, ansi.ResetAttrs...)
		frame = append(frame, out...)
		l.write(frame)
	}

	l.lastFrame = time.Now()
	l.frames.Add(1)
}
