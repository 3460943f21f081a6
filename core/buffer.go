package core

import (
	"sync"
	"sync/atomic"
)

// dirtyCell is a front-grid sentinel that compares unequal to every cell a
// caller can reasonably write, forcing the next diff to repaint it.
var dirtyCell = Cell{Ch: "\x00"}

// Buffer owns the front (last shown) and back (next to show) grids.
// All cross-goroutine access is serialized by the internal mutex; the
// Unlocked variants exist only for use inside WithLock, where the render
// goroutine performs diff-then-swap as one atomic step.
type Buffer struct {
	mu    sync.Mutex
	front []Cell
	back  []Cell
	rows  int
	cols  int

	needsRender atomic.Bool
}

// NewBuffer creates a buffer of the given dimensions, both grids cleared.
// Dimensions below 1 are clamped to 1.
func NewBuffer(rows, cols int) *Buffer {
	b := &Buffer{}
	b.allocate(rows, cols)
	return b
}

func (b *Buffer) allocate(rows, cols int) {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	size := rows * cols
	b.front = make([]Cell, size)
	b.back = make([]Cell, size)
	for i := range b.back {
		b.front[i] = EmptyCell
		b.back[i] = EmptyCell
	}
	b.rows = rows
	b.cols = cols
}

// Rows returns the grid height.
func (b *Buffer) Rows() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rows
}

// Cols returns the grid width.
func (b *Buffer) Cols() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cols
}

// Size returns rows and cols under a single lock acquisition.
func (b *Buffer) Size() (rows, cols int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rows, b.cols
}

// Resize reallocates both grids. Old content is discarded and the front
// grid is reset so the next diff repaints every cell.
func (b *Buffer) Resize(rows, cols int) {
	b.mu.Lock()
	b.allocate(rows, cols)
	b.markAllDirtyUnlocked()
	b.mu.Unlock()
	b.needsRender.Store(true)
}

// Set writes a cell into the back grid. Out-of-bounds writes are ignored.
func (b *Buffer) Set(row, col int, c Cell) {
	b.mu.Lock()
	b.setUnlocked(row, col, c)
	b.mu.Unlock()
	b.needsRender.Store(true)
}

// GetBack reads a back-grid cell. Out of bounds returns EmptyCell.
func (b *Buffer) GetBack(row, col int) Cell {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.getUnlocked(b.back, row, col)
}

// GetFront reads a front-grid cell. Out of bounds returns EmptyCell.
func (b *Buffer) GetFront(row, col int) Cell {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.getUnlocked(b.front, row, col)
}

// Swap exchanges the front and back grid pointers. O(1), no cell copies.
func (b *Buffer) Swap() {
	b.mu.Lock()
	b.SwapUnlocked()
	b.mu.Unlock()
}

// ClearBack resets every back-grid cell to EmptyCell.
func (b *Buffer) ClearBack() {
	b.mu.Lock()
	b.clearBackUnlocked()
	b.mu.Unlock()
	b.needsRender.Store(true)
}

// MarkAllDirty resets the front grid so every cell diffs as changed.
// Used after resize and on modal transitions to force a full repaint.
func (b *Buffer) MarkAllDirty() {
	b.mu.Lock()
	b.markAllDirtyUnlocked()
	b.mu.Unlock()
	b.needsRender.Store(true)
}

// MarkAllDirtyUnlocked is MarkAllDirty for callers already holding the lock.
func (b *Buffer) MarkAllDirtyUnlocked() {
	b.markAllDirtyUnlocked()
	b.needsRender.Store(true)
}

func (b *Buffer) markAllDirtyUnlocked() {
	for i := range b.front {
		b.front[i] = dirtyCell
	}
}

// BackView is a restricted back-grid handle valid only inside the
// WithBackBuffer callback, while the buffer lock is held.
type BackView struct {
	b *Buffer
}

// Set writes a back-grid cell. Out-of-bounds writes are ignored.
func (v *BackView) Set(row, col int, c Cell) {
	v.b.setUnlocked(row, col, c)
}

// Get reads a back-grid cell. Out of bounds returns EmptyCell.
func (v *BackView) Get(row, col int) Cell {
	return v.b.getUnlocked(v.b.back, row, col)
}

// Clear resets every back-grid cell to EmptyCell.
func (v *BackView) Clear() {
	v.b.clearBackUnlocked()
}

// Rows returns the grid height.
func (v *BackView) Rows() int { return v.b.rows }

// Cols returns the grid width.
func (v *BackView) Cols() int { return v.b.cols }

// WithBackBuffer runs f against the back grid under the lock, then marks
// the buffer as needing a render. The view must not escape f.
func (b *Buffer) WithBackBuffer(f func(*BackView)) {
	b.mu.Lock()
	f(&BackView{b: b})
	b.mu.Unlock()
	b.needsRender.Store(true)
}

// WithLock runs f while holding the buffer lock. Inside f only the
// Unlocked variants may be used. The render goroutine uses this to make
// diff-then-swap appear as a single atomic operation, so it never
// observes a torn front/back state.
func (b *Buffer) WithLock(f func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f()
}

// SwapUnlocked exchanges front and back. Caller must hold the lock.
func (b *Buffer) SwapUnlocked() {
	b.front, b.back = b.back, b.front
}

// SizeUnlocked returns dimensions. Caller must hold the lock.
func (b *Buffer) SizeUnlocked() (rows, cols int) {
	return b.rows, b.cols
}

// NeedsRender reports whether back-grid content changed since the flag
// was last cleared. Lock-free: single-word flag, not composite state.
func (b *Buffer) NeedsRender() bool {
	return b.needsRender.Load()
}

// SetNeedsRender raises the render flag.
func (b *Buffer) SetNeedsRender() {
	b.needsRender.Store(true)
}

// ClearNeedsRender lowers the render flag.
func (b *Buffer) ClearNeedsRender() {
	b.needsRender.Store(false)
}

func (b *Buffer) setUnlocked(row, col int, c Cell) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return
	}
	b.back[row*b.cols+col] = c
}

func (b *Buffer) getUnlocked(grid []Cell, row, col int) Cell {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return EmptyCell
	}
	return grid[row*b.cols+col]
}

// clearBackUnlocked resets the back grid using exponential copy.
func (b *Buffer) clearBackUnlocked() {
	if len(b.back) == 0 {
		return
	}
	b.back[0] = EmptyCell
	for filled := 1; filled < len(b.back); filled *= 2 {
		copy(b.back[filled:], b.back[:filled])
	}
}
